package inspector

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/sozercan/card-inspector/apimodels"
)

const (
	NoNativeQuery = "No native SQL query found in dataset_query"
	NoQueryField  = "No 'query' field found in native dataset_query"

	UnknownTitle = "Unknown"
	UnknownType  = "Unknown"
)

// Extract reads the card title, native SQL and result columns out of a raw
// card document. Missing or null fields degrade to placeholders and never
// fail; only a body that is not a JSON object is an error.
func Extract(cardID string, body []byte) (*apimodels.InspectionResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, &Error{Kind: KindDecode, Err: decodeDetail(body), Body: string(body)}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &Error{
			Kind: KindDecode,
			Err:  fmt.Errorf("expected a JSON object, got %s", root.Type),
			Body: string(body),
		}
	}

	result := &apimodels.InspectionResult{
		CardID:    cardID,
		CardTitle: UnknownTitle,
		Columns:   []apimodels.Column{},
	}
	if title := root.Get("name"); present(title) && title.String() != "" {
		result.CardTitle = title.String()
	}

	result.SQLQuery, result.HasQuery = extractQuery(root)
	result.Columns, result.HasColumnMetadata = extractColumns(root)
	return result, nil
}

func extractQuery(root gjson.Result) (string, bool) {
	native := root.Get("dataset_query.native")
	if !present(native) {
		return NoNativeQuery, false
	}
	query := native.Get("query")
	if !present(query) {
		return NoQueryField, false
	}
	return query.String(), true
}

func extractColumns(root gjson.Result) ([]apimodels.Column, bool) {
	metadata := root.Get("result_metadata")
	if !metadata.IsArray() {
		return []apimodels.Column{}, false
	}

	entries := metadata.Array()
	columns := make([]apimodels.Column, 0, len(entries))
	for i, entry := range entries {
		col := apimodels.Column{
			Index: i + 1,
			Name:  fmt.Sprintf("column_%d", i),
			Type:  UnknownType,
		}
		if name := entry.Get("name"); present(name) {
			col.Name = name.String()
		}
		if baseType := entry.Get("base_type"); present(baseType) {
			col.Type = baseType.String()
		}
		columns = append(columns, col)
	}
	return columns, true
}

// present treats JSON null the same as a missing key.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// decodeDetail re-parses an invalid body with encoding/json to obtain an
// error message that points at the offending byte.
func decodeDetail(body []byte) error {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}
