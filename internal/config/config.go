package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	ErrMissingBaseURL = errors.New("metabase base URL is not configured (set METABASE_BASE_URL)")
	ErrMissingAPIKey  = errors.New("metabase API key is not configured (set METABASE_API_KEY)")
)

// DotEnvFile is loaded into the process environment before configuration is
// read. Variables already set in the environment win.
var DotEnvFile = ".env"

type Config struct {
	Metabase MetabaseConfig `mapstructure:"metabase"`
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Log      LogConfig      `mapstructure:"log"`
	Output   string         `mapstructure:"output"`
}

type MetabaseConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type OpenAIConfig struct {
	Provider       string `mapstructure:"provider"`
	APIKey         string `mapstructure:"api_key"`
	APIEndpoint    string `mapstructure:"endpoint"`
	Model          string `mapstructure:"model"`
	DeploymentName string `mapstructure:"deployment"`
	APIVersion     string `mapstructure:"api_version"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"base-url":  "metabase.base_url",
	"timeout":   "metabase.timeout",
	"output":    "output",
	"log-level": "log.level",
	"host":      "server.host",
	"port":      "server.port",
	"model":     "openai.model",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("metabase.base_url", "http://localhost:3000")
	v.SetDefault("metabase.api_key", "")
	v.SetDefault("metabase.timeout", 30*time.Second)

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("openai.provider", "openai")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.deployment", "gpt-4o")
	v.SetDefault("openai.api_version", "2023-05-15")

	v.SetDefault("log.level", "warn")
	v.SetDefault("output", "text")
}

// LoadConfig reads configuration with the following precedence, highest
// first: flags, environment, config file, defaults.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("card-inspector")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/card-inspector")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("Configuration file loaded", "path", used)
	}
	slog.Debug("Configuration loaded successfully")
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate reports the first missing setting needed to reach Metabase.
func (c MetabaseConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Enabled reports whether an LLM provider can be constructed.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// SlogLevel converts the configured level name, falling back to warn.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelWarn
	}
	return level
}
