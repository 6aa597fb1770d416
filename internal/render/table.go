package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sozercan/card-inspector/apimodels"
)

type tableRenderer struct{}

func (tableRenderer) Result(w io.Writer, result *apimodels.InspectionResult) error {
	writeQuery(w, result)
	_, _ = fmt.Fprintln(w)

	if !result.HasColumnMetadata {
		_, err := fmt.Fprintln(w, "No column metadata found")
		return err
	}

	columnTable(w, result.Columns, table.StyleLight).Render()
	_, err := fmt.Fprintf(w, "(%d columns)\n", len(result.Columns))
	return err
}

func (tableRenderer) Error(w io.Writer, err error) error {
	return writeTextError(w, err)
}

type markdownRenderer struct{}

func (markdownRenderer) Result(w io.Writer, result *apimodels.InspectionResult) error {
	_, _ = fmt.Fprintf(w, "## %s (card %s)\n\n", result.CardTitle, result.CardID)

	if result.HasQuery {
		_, _ = fmt.Fprintf(w, "```sql\n%s\n```\n\n", result.SQLQuery)
	} else {
		_, _ = fmt.Fprintf(w, "_%s_\n\n", result.SQLQuery)
	}

	if !result.HasColumnMetadata {
		_, err := fmt.Fprintln(w, "_No column metadata found_")
		return err
	}
	columnTable(w, result.Columns, table.StyleDefault).RenderMarkdown()
	return nil
}

func (markdownRenderer) Error(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "> **%s**\n", ErrorMessage(err))
	return werr
}

// columnTable keeps the header case as written; go-pretty styles upper-case
// headers by default.
func columnTable(w io.Writer, columns []apimodels.Column, style table.Style) table.Writer {
	style.Format.Header = text.FormatDefault

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	t.AppendHeader(table.Row{"#", "Name", "Type"})
	for _, col := range columns {
		t.AppendRow(table.Row{col.Index, col.Name, col.Type})
	}
	return t
}
