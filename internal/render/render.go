// Package render turns inspection results and inspection failures into
// terminal output. Each output format is a Renderer; the extraction logic
// never needs to know which one is in use.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sozercan/card-inspector/apimodels"
	"github.com/sozercan/card-inspector/internal/inspector"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted values for the output flag.
var Formats = []string{string(FormatText), string(FormatJSON), string(FormatTable), string(FormatMarkdown)}

const separatorWidth = 40

type Renderer interface {
	// Result writes a successful inspection.
	Result(w io.Writer, result *apimodels.InspectionResult) error

	// Error writes a failed inspection as a diagnostic.
	Error(w io.Writer, err error) error
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatTable:
		return f, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(Formats, ", "))
	}
}

func New(format Format) Renderer {
	switch format {
	case FormatJSON:
		return jsonRenderer{}
	case FormatTable:
		return tableRenderer{}
	case FormatMarkdown:
		return markdownRenderer{}
	default:
		return textRenderer{}
	}
}

// ErrorMessage is the single-line form of err shared by every format.
func ErrorMessage(err error) string {
	kind := inspector.KindOf(err)
	if kind == inspector.KindUsage {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", kind.Label(), err)
}

func separator() string {
	return strings.Repeat("-", separatorWidth)
}

func writeQuery(w io.Writer, result *apimodels.InspectionResult) {
	if !result.HasQuery {
		_, _ = fmt.Fprintln(w, result.SQLQuery)
		return
	}
	_, _ = fmt.Fprintln(w, "SQL QUERY:")
	_, _ = fmt.Fprintln(w, separator())
	_, _ = fmt.Fprintln(w, result.SQLQuery)
}

// writeTextError prints the diagnostic, followed by the raw body for decode
// failures so the caller can see what Metabase actually sent.
func writeTextError(w io.Writer, err error) error {
	if _, werr := fmt.Fprintln(w, ErrorMessage(err)); werr != nil {
		return werr
	}
	if inspector.KindOf(err) == inspector.KindDecode {
		_, werr := fmt.Fprintf(w, "Raw Response: %s\n", inspector.RawBody(err))
		return werr
	}
	return nil
}

type textRenderer struct{}

func (textRenderer) Result(w io.Writer, result *apimodels.InspectionResult) error {
	writeQuery(w, result)

	if !result.HasColumnMetadata {
		_, err := fmt.Fprintln(w, "\nNo column metadata found")
		return err
	}
	_, _ = fmt.Fprintln(w, "\nCOLUMNS:")
	_, _ = fmt.Fprintln(w, separator())
	for _, col := range result.Columns {
		if _, err := fmt.Fprintf(w, "%d. %s (%s)\n", col.Index, col.Name, col.Type); err != nil {
			return err
		}
	}
	return nil
}

func (textRenderer) Error(w io.Writer, err error) error {
	return writeTextError(w, err)
}

type jsonRenderer struct{}

func (jsonRenderer) Result(w io.Writer, result *apimodels.InspectionResult) error {
	return writeJSON(w, result)
}

func (jsonRenderer) Error(w io.Writer, err error) error {
	return writeJSON(w, apimodels.ErrorResponse{Error: ErrorMessage(err)})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
