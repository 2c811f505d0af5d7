package tabular

import (
	"strings"
)

// ============================================================================
// TEXT PARSER — Comma-separated text exported from the recap spreadsheet
// ============================================================================
// Deliberately simpler than encoding/csv:
//   - a double quote toggles quoted mode and is itself dropped
//   - commas split fields only outside quoted mode
//   - no "" escape, no multi-line fields
//   - every field is trimmed
//
// encoding/csv rejects the stray quotes these exports contain, which would
// lose whole rows.
// ============================================================================

const utf8BOM = "\ufeff"

// ParseText parses delimited text into a RawTable.
// Lines that are empty after trimming are discarded. The first remaining line
// is the header; later lines are kept only if at least one field is non-blank.
// Parsing never fails.
func ParseText(text string) *RawTable {
	text = strings.TrimPrefix(text, utf8BOM)

	table := &RawTable{Rows: []Row{}}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := SplitLine(line)
		if table.Headers == nil {
			table.Headers = fields
			continue
		}

		row := make(Row, len(fields))
		for i, f := range fields {
			row[i] = Cell{Text: f}
		}
		if row.IsBlank() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// SplitLine tokenizes one line.
//
//	SplitLine(`"Acme, Inc.",100`) → ["Acme, Inc.", "100"]
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}
