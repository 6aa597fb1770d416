package apimodels

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CardID identifies a card. The web tools page sends it as a string, other
// callers send a bare number; both decode to the same value.
type CardID string

func (c *CardID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CardID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("card ID must be a string or a number: %w", err)
	}
	*c = CardID(n.String())
	return nil
}

type InspectRequest struct {
	// CardID is the card to inspect
	CardID CardID `json:"cardId"`
}

type ExplainRequest struct {
	// CardID is the card whose query should be explained
	CardID CardID `json:"cardId"`

	// Optional parameters to control the LLM call
	Options ExplainOptions `json:"options,omitempty"`
}

type ExplainOptions struct {
	// Model specifies which LLM model to use (e.g. "gpt-4o")
	Model string `json:"model,omitempty"`

	// MaxTokens limits the LLM response length
	MaxTokens int64 `json:"maxTokens,omitempty"`

	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `json:"temperature,omitempty"`
}
