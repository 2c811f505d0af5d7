package schema

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spektr-org/rekap/tabular"
)

// ============================================================================
// FIELD DISCOVERY — Per-column type sniffing and profile for diagnostics
// ============================================================================
// Used by `rekap columns` and GET /api/dataset to explain a file before any
// numbers are trusted. Nothing downstream depends on the detected types; the
// normalizer always goes through the ColumnRoleMap.
//
// Type detection per column, over the first DefaultSampleSize rows:
//   1. no non-blank value           → empty
//   2. any value looks like DD-MMM-YY → date
//   3. any value has a leading number once non-numeric characters are removed → numeric
//   4. otherwise                   → string
// ============================================================================

// DefaultSampleSize is how many rows type detection looks at.
const DefaultSampleSize = 100

// maxSamples caps the example values kept per column.
const maxSamples = 5

// FieldType is the coarse type of a column.
type FieldType string

const (
	FieldEmpty   FieldType = "empty"
	FieldDate    FieldType = "date"
	FieldNumeric FieldType = "numeric"
	FieldString  FieldType = "string"
)

// ColumnProfile describes one column of a RawTable.
type ColumnProfile struct {
	Index    int       `json:"index"`
	Header   string    `json:"header"`
	Type     FieldType `json:"type"`
	NonEmpty int       `json:"nonEmpty"`
	Unique   int       `json:"unique"`
	Samples  []string  `json:"samples"`
	Roles    []Role    `json:"roles,omitempty"`
}

var (
	shortDatePattern = regexp.MustCompile(`^\d{2}-\w{3}-\d{2}`)
	leadingNumber    = regexp.MustCompile(`^(\d|\.\d)`)
	nonNumericChars  = regexp.MustCompile(`[^\d,.]`)
)

// DetectFieldTypes sniffs the type of every column, keyed by header.
// Duplicate headers keep the type of the first occurrence.
func DetectFieldTypes(headers []string, rows []tabular.Row) map[string]FieldType {
	types := make(map[string]FieldType, len(headers))
	sample := rows
	if len(sample) > DefaultSampleSize {
		sample = sample[:DefaultSampleSize]
	}

	for i, header := range headers {
		if _, seen := types[header]; seen {
			continue
		}
		types[header] = detectType(columnValues(sample, i))
	}
	return types
}

// ProfileColumns builds a ColumnProfile per header. roles annotates each
// column with the roles it was resolved to.
func ProfileColumns(table *tabular.RawTable, roles ColumnRoleMap) []ColumnProfile {
	if !table.HasHeaders() {
		return nil
	}

	sample := table.Rows
	if len(sample) > DefaultSampleSize {
		sample = sample[:DefaultSampleSize]
	}

	byIndex := make(map[int][]Role)
	for _, m := range roles.Matches() {
		byIndex[m.Index] = append(byIndex[m.Index], m.Role)
	}

	profiles := make([]ColumnProfile, 0, len(table.Headers))
	for i, header := range table.Headers {
		values := columnValues(table.Rows, i)
		unique := make(map[string]bool, len(values))
		for _, v := range values {
			unique[v] = true
		}

		profiles = append(profiles, ColumnProfile{
			Index:    i,
			Header:   header,
			Type:     detectType(columnValues(sample, i)),
			NonEmpty: len(values),
			Unique:   len(unique),
			Samples:  collectSamples(unique, maxSamples),
			Roles:    byIndex[i],
		})
	}
	return profiles
}

// columnValues returns the non-blank display values of column i.
func columnValues(rows []tabular.Row, i int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if v := strings.TrimSpace(row.Text(i)); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func detectType(values []string) FieldType {
	if len(values) == 0 {
		return FieldEmpty
	}
	for _, v := range values {
		if shortDatePattern.MatchString(v) {
			return FieldDate
		}
	}
	for _, v := range values {
		if looksNumeric(v) {
			return FieldNumeric
		}
	}
	return FieldString
}

// looksNumeric applies the same cleanup as amount parsing: keep digits,
// commas and dots, drop commas, then require a leading number.
func looksNumeric(s string) bool {
	cleaned := strings.ReplaceAll(nonNumericChars.ReplaceAllString(s, ""), ",", "")
	return leadingNumber.MatchString(cleaned)
}

// collectSamples picks up to n values in sorted order.
func collectSamples(unique map[string]bool, n int) []string {
	samples := make([]string, 0, len(unique))
	for v := range unique {
		samples = append(samples, v)
	}
	sort.Strings(samples)

	if len(samples) > n {
		samples = samples[:n]
	}
	return samples
}
