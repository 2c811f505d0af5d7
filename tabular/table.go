package tabular

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// RAW TABLE — Header row + data rows, as read from a CSV or workbook
// ============================================================================
// Rows may be ragged. Every accessor is bounds-safe: reading past the end of
// a row yields an empty cell, never a panic.
// ============================================================================

// Cell is a single source value.
// Text is always the trimmed display text. Workbook cells that hold a number
// (including date serials) also carry the raw value in Number.
type Cell struct {
	Text    string  `json:"text"`
	Number  float64 `json:"number,omitempty"`
	Numeric bool    `json:"numeric,omitempty"`
}

// TextCell builds a text-only cell.
func TextCell(s string) Cell {
	return Cell{Text: strings.TrimSpace(s)}
}

// NumberCell builds a numeric cell. Text is the display text; when empty it is
// derived from the value.
func NumberCell(v float64, text string) Cell {
	text = strings.TrimSpace(text)
	if text == "" {
		text = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return Cell{Text: text, Number: v, Numeric: true}
}

// IsBlank reports whether the cell carries no value.
func (c Cell) IsBlank() bool {
	return !c.Numeric && c.Text == ""
}

// Row is one line of the source.
type Row []Cell

// Cell returns the cell at i, or an empty cell when out of range.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Text returns the display text at i, or "" when out of range.
func (r Row) Text(i int) string {
	return r.Cell(i).Text
}

// IsBlank reports whether every cell in the row is blank.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Strings returns the display text of every cell.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Text
	}
	return out
}

// RawTable is a parsed source: one header row and zero or more data rows.
// Every row in Rows has at least one non-blank cell.
type RawTable struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasHeaders reports whether a header row was found.
func (t *RawTable) HasHeaders() bool {
	return t != nil && len(t.Headers) > 0
}

// Column returns the display text of column i for every row.
func (t *RawTable) Column(i int) []string {
	out := make([]string, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, row.Text(i))
	}
	return out
}

// ============================================================================
// GRID INPUT — Spreadsheet-style value grids
// ============================================================================

// FromCells builds a RawTable from a cell grid.
// The first non-blank row becomes the header; later blank rows are dropped.
func FromCells(grid [][]Cell) *RawTable {
	table := &RawTable{Rows: []Row{}}
	for _, cells := range grid {
		row := Row(cells)
		if row.IsBlank() {
			continue
		}
		if table.Headers == nil {
			table.Headers = row.Strings()
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// FromValues builds a RawTable from a grid of loosely typed values, the shape
// produced by most spreadsheet readers. Numbers keep their raw value so date
// serials survive to the normalizer.
func FromValues(grid [][]any) *RawTable {
	cells := make([][]Cell, len(grid))
	for i, values := range grid {
		row := make([]Cell, len(values))
		for j, v := range values {
			row[j] = cellFromValue(v)
		}
		cells[i] = row
	}
	return FromCells(cells)
}

func cellFromValue(v any) Cell {
	switch val := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return val
	case string:
		return TextCell(val)
	case float64:
		return NumberCell(val, "")
	case float32:
		return NumberCell(float64(val), "")
	case int:
		return NumberCell(float64(val), "")
	case int64:
		return NumberCell(float64(val), "")
	case int32:
		return NumberCell(float64(val), "")
	case uint:
		return NumberCell(float64(val), "")
	case uint64:
		return NumberCell(float64(val), "")
	case bool:
		return TextCell(strings.ToUpper(strconv.FormatBool(val)))
	case time.Time:
		return TextCell(val.Format("2006-01-02"))
	case fmt.Stringer:
		return TextCell(val.String())
	default:
		return TextCell(fmt.Sprint(val))
	}
}
