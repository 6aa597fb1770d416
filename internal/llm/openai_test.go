package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/card-inspector/internal/config"
)

const completionResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Counts orders per day."}}
  ],
  "usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(&config.OpenAIConfig{Provider: "openai"})
	assert.Error(t, err)
}

func TestOpenAI_Analyze(t *testing.T) {
	var got map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), "unexpected path %s", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	}))
	defer ts.Close()

	provider, err := NewOpenAI(&config.OpenAIConfig{
		Provider:    "openai",
		APIKey:      "sk-test",
		APIEndpoint: ts.URL + "/v1/",
		Model:       "gpt-4o-mini",
	})
	require.NoError(t, err)

	resp, err := provider.Analyze(context.Background(),
		[]string{"You explain SQL."},
		[]string{"SELECT 1"},
		Option(func(o *Options) { o.MaxTokens = 50 }),
	)
	require.NoError(t, err)

	assert.Equal(t, "Counts orders per day.", resp.Content)
	assert.Equal(t, int64(17), resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 50, got["max_tokens"])
	messages, ok := got["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAI_DefaultModel(t *testing.T) {
	o := &OpenAI{cfg: &config.OpenAIConfig{Provider: "azure", Model: "gpt-4o-mini", DeploymentName: "prod-gpt4o"}}
	assert.Equal(t, "prod-gpt4o", o.defaultModel())

	o = &OpenAI{cfg: &config.OpenAIConfig{Provider: "openai", Model: "gpt-4o-mini", DeploymentName: "prod-gpt4o"}}
	assert.Equal(t, "gpt-4o-mini", o.defaultModel())
}
