// Package output renders command results as terminal tables, JSON, CSV or
// Markdown.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/spektr-org/rekap/engine"
)

// Format is an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Renderer writes results in one Format.
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a Renderer. Unknown formats render as tables.
func NewRenderer(w io.Writer, format string) *Renderer {
	f := Format(format)
	switch f {
	case FormatJSON, FormatCSV, FormatMarkdown:
	default:
		f = FormatTable
	}
	return &Renderer{w: w, format: f}
}

// Format returns the effective format.
func (r *Renderer) Format() Format { return r.format }

// IsJSON reports whether results should be written as JSON documents.
func (r *Renderer) IsJSON() bool { return r.format == FormatJSON }

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Note writes a line of prose. Machine formats (json, csv) skip it.
func (r *Renderer) Note(format string, args ...any) {
	if r.format == FormatJSON || r.format == FormatCSV {
		return
	}
	_, _ = fmt.Fprintf(r.w, format+"\n", args...)
}

// Table writes td. JSON writes the TableData document itself.
func (r *Renderer) Table(td *engine.TableData) error {
	if td == nil {
		return nil
	}
	if r.format == FormatJSON {
		return r.JSON(td)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	if r.format == FormatTable {
		t.SetTitle(td.Title)
	}

	header := make(table.Row, len(td.Columns))
	configs := make([]table.ColumnConfig, len(td.Columns))
	for i, col := range td.Columns {
		header[i] = col.Label
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align(col.Align)}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, row := range td.Rows {
		out := make(table.Row, len(td.Columns))
		for i := range td.Columns {
			if i < len(row) {
				out[i] = row[i]
			}
		}
		t.AppendRow(out)
	}

	if td.Summary != nil && len(td.Columns) > 0 {
		footer := make(table.Row, len(td.Columns))
		footer[0] = td.Summary.Label
		for i, col := range td.Columns {
			if v, ok := td.Summary.Values[col.Key]; ok && i > 0 {
				footer[i] = v
			}
		}
		t.AppendFooter(footer)
	}

	switch r.format {
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		_, _ = fmt.Fprintf(r.w, "### %s\n\n", td.Title)
		t.RenderMarkdown()
		_, _ = fmt.Fprintln(r.w)
	default:
		if len(td.Rows) == 0 {
			_, _ = fmt.Fprintf(r.w, "%s\n(0 rows)\n", td.Title)
			return nil
		}
		t.Render()
	}
	return nil
}

func align(a string) text.Align {
	switch a {
	case "right":
		return text.AlignRight
	case "center":
		return text.AlignCenter
	default:
		return text.AlignLeft
	}
}
