package inspector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/card-inspector/apimodels"
)

func TestExtract_SQLQuery(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantQuery string
		wantFound bool
	}{
		{
			name:      "native query kept verbatim",
			body:      `{"dataset_query":{"native":{"query":"  SELECT *\n  FROM orders\tWHERE id = 1  "}}}`,
			wantQuery: "  SELECT *\n  FROM orders\tWHERE id = 1  ",
			wantFound: true,
		},
		{
			name:      "native without query key",
			body:      `{"dataset_query":{"native":{"template-tags":{}}}}`,
			wantQuery: NoQueryField,
		},
		{
			name:      "native query null",
			body:      `{"dataset_query":{"native":{"query":null}}}`,
			wantQuery: NoQueryField,
		},
		{
			name:      "structured query has no native block",
			body:      `{"dataset_query":{"type":"query","query":{"source-table":2}}}`,
			wantQuery: NoNativeQuery,
		},
		{
			name:      "no dataset_query at all",
			body:      `{"name":"x"}`,
			wantQuery: NoNativeQuery,
		},
		{
			name:      "dataset_query null",
			body:      `{"dataset_query":null}`,
			wantQuery: NoNativeQuery,
		},
		{
			name:      "empty query string is still a query",
			body:      `{"dataset_query":{"native":{"query":""}}}`,
			wantQuery: "",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Extract("1", []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, result.SQLQuery)
			assert.Equal(t, tt.wantFound, result.HasQuery)
		})
	}
}

func TestExtract_Columns(t *testing.T) {
	body := `{"result_metadata":[{"name":"id","base_type":"INTEGER"},{}]}`

	result, err := Extract("5342", []byte(body))
	require.NoError(t, err)

	assert.True(t, result.HasColumnMetadata)
	assert.Equal(t, []apimodels.Column{
		{Index: 1, Name: "id", Type: "INTEGER"},
		{Index: 2, Name: "column_1", Type: "Unknown"},
	}, result.Columns)
}

func TestExtract_ColumnOrderAndDefaults(t *testing.T) {
	body := `{"result_metadata":[
		{"name":"created_at","base_type":"type/DateTime"},
		{"base_type":"type/Text"},
		{"name":"total"},
		{"name":null,"base_type":null}
	]}`

	result, err := Extract("1", []byte(body))
	require.NoError(t, err)
	require.Len(t, result.Columns, 4)

	assert.Equal(t, apimodels.Column{Index: 1, Name: "created_at", Type: "type/DateTime"}, result.Columns[0])
	assert.Equal(t, apimodels.Column{Index: 2, Name: "column_1", Type: "type/Text"}, result.Columns[1])
	assert.Equal(t, apimodels.Column{Index: 3, Name: "total", Type: "Unknown"}, result.Columns[2])
	assert.Equal(t, apimodels.Column{Index: 4, Name: "column_3", Type: "Unknown"}, result.Columns[3])
}

func TestExtract_MissingColumnMetadata(t *testing.T) {
	for _, body := range []string{`{}`, `{"result_metadata":null}`} {
		result, err := Extract("1", []byte(body))
		require.NoError(t, err)
		assert.False(t, result.HasColumnMetadata)
		assert.NotNil(t, result.Columns)
		assert.Empty(t, result.Columns)
	}
}

func TestExtract_Title(t *testing.T) {
	result, err := Extract("9", []byte(`{"name":"Weekly Revenue"}`))
	require.NoError(t, err)
	assert.Equal(t, "Weekly Revenue", result.CardTitle)
	assert.Equal(t, "9", result.CardID)

	result, err = Extract("9", []byte(`{"name":null}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownTitle, result.CardTitle)
}

func TestExtract_DecodeErrors(t *testing.T) {
	for _, body := range []string{"", "<html>Bad Gateway</html>", `{"name":`, `[1,2,3]`, `"text"`} {
		t.Run(body, func(t *testing.T) {
			result, err := Extract("1", []byte(body))
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, KindDecode, KindOf(err))
			assert.Equal(t, body, RawBody(err))
		})
	}
}
