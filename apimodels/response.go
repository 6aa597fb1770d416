package apimodels

type InspectionResult struct {
	// Identifier as supplied by the caller
	CardID string `json:"card_id"`

	// Top-level card name, "Unknown" when absent
	CardTitle string `json:"card_title"`

	// Native SQL, or a placeholder explaining why there is none
	SQLQuery string `json:"sql_query"`

	// Result columns in source order
	Columns []Column `json:"columns"`

	// HasQuery reports whether dataset_query.native.query was present
	HasQuery bool `json:"-"`

	// HasColumnMetadata reports whether result_metadata was present
	HasColumnMetadata bool `json:"-"`
}

type Column struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ExplainResponse struct {
	// The plain-language explanation of the card's query
	Result string `json:"result"`

	// The inspection the explanation was based on
	Inspection *InspectionResult `json:"inspection"`

	// Metadata about the LLM call
	Metadata ExplainMetadata `json:"metadata"`
}

type ExplainMetadata struct {
	// Time taken for the explanation
	Duration string `json:"duration"`

	// Model used for the explanation
	Model string `json:"model"`

	// Tokens used by the LLM
	TokensUsed int64 `json:"tokensUsed"`
}
