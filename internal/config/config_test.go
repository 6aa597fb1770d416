package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("METABASE_API_KEY", "")
	DotEnvFile = ""
	t.Cleanup(func() { DotEnvFile = ".env" })

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Metabase.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Metabase.Timeout)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.OpenAI.Provider)
	assert.Equal(t, "text", cfg.Output)
	assert.ErrorIs(t, cfg.Metabase.Validate(), ErrMissingAPIKey)
	assert.False(t, cfg.OpenAI.Enabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	DotEnvFile = ""
	t.Cleanup(func() { DotEnvFile = ".env" })
	t.Setenv("METABASE_BASE_URL", "https://metabase.example.com")
	t.Setenv("METABASE_API_KEY", "mb_test")
	t.Setenv("METABASE_TIMEOUT", "5s")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://metabase.example.com", cfg.Metabase.BaseURL)
	assert.Equal(t, "mb_test", cfg.Metabase.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Metabase.Timeout)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.NoError(t, cfg.Metabase.Validate())
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	DotEnvFile = ""
	t.Cleanup(func() { DotEnvFile = ".env" })
	t.Setenv("METABASE_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "card-inspector.yaml")
	content := "metabase:\n  base_url: https://from-file.example.com\n  api_key: file-key\noutput: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--base-url", "https://from-flag.example.com"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "https://from-flag.example.com", cfg.Metabase.BaseURL)
	assert.Equal(t, "file-key", cfg.Metabase.APIKey)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	DotEnvFile = ""
	t.Cleanup(func() { DotEnvFile = ".env" })

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("METABASE_API_KEY=from-dotenv\n"), 0o600))

	// godotenv never overrides variables that are already set, so make sure
	// the key is absent and restore it afterwards.
	t.Setenv("METABASE_API_KEY", "")
	require.NoError(t, os.Unsetenv("METABASE_API_KEY"))

	DotEnvFile = path
	t.Cleanup(func() { DotEnvFile = ".env" })

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Metabase.APIKey)
}

func TestMetabaseConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  MetabaseConfig
		want error
	}{
		{name: "complete", cfg: MetabaseConfig{BaseURL: "http://x", APIKey: "k"}},
		{name: "no base url", cfg: MetabaseConfig{APIKey: "k"}, want: ErrMissingBaseURL},
		{name: "blank key", cfg: MetabaseConfig{BaseURL: "http://x", APIKey: "  "}, want: ErrMissingAPIKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "ERROR"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "loud"}.SlogLevel())
}
