package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// FILTERS — FilterSpec → Predicate
// ============================================================================
// Criteria are AND-combined. An empty string or nil pointer means the
// criterion is absent. Filtering always returns a new slice; the canonical
// record slice is never reordered or trimmed.
// ============================================================================

// ErrInvalidQuery marks errors caused by bad query input.
var ErrInvalidQuery = errors.New("invalid query")

// FilterSpec describes which records a query looks at.
type FilterSpec struct {
	// CustomerSubstring matches customers containing it, case-insensitively.
	CustomerSubstring string `json:"customer,omitempty"`
	// CustomerExact matches one customer name exactly (after trimming).
	CustomerExact string `json:"customerExact,omitempty"`
	// SalespersonExact matches one salesperson, case-insensitively.
	SalespersonExact string `json:"sales,omitempty"`
	// StatusSubstring matches statuses containing it, case-insensitively.
	StatusSubstring string `json:"status,omitempty"`

	// DateFrom and DateTo are inclusive; DateTo covers its whole day.
	// Records without a date never pass a date bound.
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`

	// Conversion gate. nil counts as true. Both false rejects everything.
	IncludeConverted    *bool `json:"includeConverted,omitempty"`
	IncludeNotConverted *bool `json:"includeNotConverted,omitempty"`
}

// Predicate reports whether a record passes a filter.
type Predicate func(Record) bool

// Bool returns a pointer to b, for FilterSpec gates.
func Bool(b bool) *bool { return &b }

// IsEmpty returns true if no criterion is set.
func (f FilterSpec) IsEmpty() bool {
	return strings.TrimSpace(f.CustomerSubstring) == "" &&
		strings.TrimSpace(f.CustomerExact) == "" &&
		strings.TrimSpace(f.SalespersonExact) == "" &&
		strings.TrimSpace(f.StatusSubstring) == "" &&
		f.DateFrom == nil && f.DateTo == nil &&
		f.IncludeConverted == nil && f.IncludeNotConverted == nil
}

// Validate reports specs that can never match anything, so callers can
// reject them before filtering.
func (f FilterSpec) Validate() error {
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(EndOfDay(*f.DateTo)) {
		return fmt.Errorf("%w: dateFrom %s is after dateTo %s",
			ErrInvalidQuery, f.DateFrom.Format("2006-01-02"), f.DateTo.Format("2006-01-02"))
	}
	if !gate(f.IncludeConverted) && !gate(f.IncludeNotConverted) {
		return fmt.Errorf("%w: both converted and not-converted records are excluded", ErrInvalidQuery)
	}
	return nil
}

// BuildPredicate compiles spec into a single-pass predicate.
func BuildPredicate(spec FilterSpec) Predicate {
	var checks []Predicate

	if needle := strings.ToLower(strings.TrimSpace(spec.CustomerSubstring)); needle != "" {
		checks = append(checks, func(r Record) bool {
			return r.Customer != "" && strings.Contains(strings.ToLower(r.Customer), needle)
		})
	}

	if exact := strings.TrimSpace(spec.CustomerExact); exact != "" {
		checks = append(checks, func(r Record) bool {
			return r.Customer == exact
		})
	}

	if sales := strings.ToLower(strings.TrimSpace(spec.SalespersonExact)); sales != "" {
		checks = append(checks, func(r Record) bool {
			return strings.ToLower(strings.TrimSpace(r.Salesperson)) == sales
		})
	}

	if status := strings.ToLower(strings.TrimSpace(spec.StatusSubstring)); status != "" {
		checks = append(checks, func(r Record) bool {
			return strings.Contains(strings.ToLower(r.StatusRaw), status)
		})
	}

	if spec.DateFrom != nil {
		from := *spec.DateFrom
		checks = append(checks, func(r Record) bool {
			return r.Date != nil && !r.Date.Before(from)
		})
	}

	if spec.DateTo != nil {
		to := EndOfDay(*spec.DateTo)
		checks = append(checks, func(r Record) bool {
			return r.Date != nil && !r.Date.After(to)
		})
	}

	converted, notConverted := gate(spec.IncludeConverted), gate(spec.IncludeNotConverted)
	switch {
	case converted && notConverted:
		// no exclusion
	case !converted && !notConverted:
		return func(Record) bool { return false }
	default:
		checks = append(checks, func(r Record) bool {
			return r.IsConverted == converted
		})
	}

	return func(r Record) bool {
		for _, check := range checks {
			if !check(r) {
				return false
			}
		}
		return true
	}
}

// Filter returns the records matching spec, in their original order.
func Filter(records []Record, spec FilterSpec) []Record {
	keep := BuildPredicate(spec)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// EndOfDay widens t to 23:59:59.999 of its calendar day, in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func gate(b *bool) bool {
	return b == nil || *b
}

// ============================================================================
// FILTER INPUT — Text criteria from flags or query parameters
// ============================================================================

// DayLayout is the layout of date bounds in FilterInput.
const DayLayout = "2006-01-02"

// FilterInput carries filter criteria as the user typed them.
type FilterInput struct {
	Customer      string
	CustomerExact string
	Sales         string
	Status        string
	From          string // YYYY-MM-DD
	To            string // YYYY-MM-DD
	Converted     string // bool text; empty means unset
	NotConverted  string // bool text; empty means unset
}

// Spec parses in into a FilterSpec. Date bounds are read in loc.
func (in FilterInput) Spec(loc *time.Location) (FilterSpec, error) {
	spec := FilterSpec{
		CustomerSubstring: in.Customer,
		CustomerExact:     in.CustomerExact,
		SalespersonExact:  in.Sales,
		StatusSubstring:   in.Status,
	}
	var err error
	if spec.DateFrom, err = ParseDay(in.From, loc); err != nil {
		return FilterSpec{}, err
	}
	if spec.DateTo, err = ParseDay(in.To, loc); err != nil {
		return FilterSpec{}, err
	}
	if spec.IncludeConverted, err = parseGate("converted", in.Converted); err != nil {
		return FilterSpec{}, err
	}
	if spec.IncludeNotConverted, err = parseGate("notConverted", in.NotConverted); err != nil {
		return FilterSpec{}, err
	}
	return spec, spec.Validate()
}

// ParseDay parses a YYYY-MM-DD bound at midnight in loc. Empty yields nil.
func ParseDay(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidQuery, s)
	}
	return &t, nil
}

func parseGate(name, s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false, got %q", ErrInvalidQuery, name, s)
	}
	return &b, nil
}
