package engine

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ============================================================================
// AGGREGATORS — Grouping, counting and sorting of RFQ records
// ============================================================================
// All functions are pure: the input slice is read, never reordered.
// Pipeline per aggregator: group (first-appearance order) → count → sort.
//
// Every sort is a total order. The primary metric is followed by explicit
// tiebreaks, ending in customer/salesperson name, so equal inputs always
// produce identical output.
// ============================================================================

// StatusMode selects which side of the conversion split a volume view ranks by.
type StatusMode string

const (
	StatusBoth         StatusMode = "both"
	StatusConverted    StatusMode = "converted"
	StatusNotConverted StatusMode = "not-converted"
)

// ParseStatusMode accepts the API/CLI spellings of a StatusMode.
// Empty input means StatusBoth.
func ParseStatusMode(s string) (StatusMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "all":
		return StatusBoth, nil
	case "converted", "jadi-oc":
		return StatusConverted, nil
	case "not-converted", "notconverted", "tidak-jadi-oc":
		return StatusNotConverted, nil
	default:
		return "", fmt.Errorf("%w: unknown status mode %q", ErrInvalidQuery, s)
	}
}

// ============================================================================
// COUNTS
// ============================================================================

// CountByCustomerSalesperson counts RFQs per (customer, salesperson) pair.
// Records missing either name are skipped.
// Order: count desc, customer asc, salesperson asc.
func CountByCustomerSalesperson(records []Record) []PairCount {
	type pair struct{ customer, sales string }

	index := make(map[pair]int)
	rows := []PairCount{}
	for _, r := range records {
		if r.Customer == "" || r.Salesperson == "" {
			continue
		}
		k := pair{r.Customer, r.Salesperson}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, PairCount{Customer: r.Customer, Salesperson: r.Salesperson})
		}
		rows[i].Count++
	}

	names := newNameOrder()
	slices.SortStableFunc(rows, func(a, b PairCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := names.compare(a.Customer, b.Customer); c != 0 {
			return c
		}
		return names.compare(a.Salesperson, b.Salesperson)
	})
	return rows
}

// CountByCustomer counts RFQs per customer. Order: count desc, name asc.
func CountByCustomer(records []Record) []KeyCount {
	return countByKey(records, func(r Record) string { return r.Customer })
}

// CountBySalesperson counts RFQs per salesperson. Order: count desc, name asc.
func CountBySalesperson(records []Record) []KeyCount {
	return countByKey(records, func(r Record) string { return r.Salesperson })
}

// StatusBreakdown counts records per non-empty status.
func StatusBreakdown(records []Record) []KeyCount {
	return countByKey(records, func(r Record) string { return r.StatusRaw })
}

func countByKey(records []Record, key func(Record) string) []KeyCount {
	index := make(map[string]int)
	rows := []KeyCount{}
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, KeyCount{Key: k})
		}
		rows[i].Count++
	}
	sortKeyCounts(rows)
	return rows
}

func sortKeyCounts(rows []KeyCount) {
	names := newNameOrder()
	slices.SortStableFunc(rows, func(a, b KeyCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return names.compare(a.Key, b.Key)
	})
}

// ============================================================================
// CONVERSION
// ============================================================================

// ConversionByCustomer computes the conversion rate of every customer.
// Rates that agree to two decimals tie. Order: rate desc, total desc, name asc.
func ConversionByCustomer(records []Record) []ConversionRow {
	index := make(map[string]int)
	rows := []ConversionRow{}
	for _, r := range records {
		if r.Customer == "" {
			continue
		}
		i, ok := index[r.Customer]
		if !ok {
			i = len(rows)
			index[r.Customer] = i
			rows = append(rows, ConversionRow{Customer: r.Customer})
		}
		rows[i].Total++
		if r.IsConverted {
			rows[i].Converted++
		}
	}

	for i := range rows {
		rows[i].NotConverted = rows[i].Total - rows[i].Converted
		rows[i].ConversionRate = Rate(rows[i].Converted, rows[i].Total)
	}

	names := newNameOrder()
	slices.SortStableFunc(rows, func(a, b ConversionRow) int {
		if c := cmp.Compare(RoundTo2(b.ConversionRate), RoundTo2(a.ConversionRate)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return names.compare(a.Customer, b.Customer)
	})
	return rows
}

// FilterConversionRows narrows conversion rows for display. Rates are not
// recomputed: they always cover every RFQ of the customer.
func FilterConversionRows(rows []ConversionRow, mode StatusMode) []ConversionRow {
	out := make([]ConversionRow, 0, len(rows))
	for _, row := range rows {
		switch mode {
		case StatusConverted:
			if row.Converted == 0 {
				continue
			}
		case StatusNotConverted:
			if row.NotConverted == 0 {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

// ============================================================================
// AMOUNTS
// ============================================================================

// AmountByCustomerSalesperson sums EffectiveAmount per (customer, salesperson).
// Sums are accumulated in decimal so long recap files do not drift.
// Order: amount desc, count desc, customer asc, salesperson asc.
func AmountByCustomerSalesperson(records []Record) []PairAmount {
	type pair struct{ customer, sales string }

	index := make(map[pair]int)
	rows := []PairAmount{}
	var sums []decimal.Decimal
	for _, r := range records {
		if r.Customer == "" || r.Salesperson == "" {
			continue
		}
		k := pair{r.Customer, r.Salesperson}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, PairAmount{Customer: r.Customer, Salesperson: r.Salesperson})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(decimal.NewFromFloat(r.EffectiveAmount))
		rows[i].Count++
	}
	for i := range rows {
		rows[i].TotalAmount = sums[i].InexactFloat64()
	}

	names := newNameOrder()
	slices.SortStableFunc(rows, func(a, b PairAmount) int {
		if c := cmp.Compare(b.TotalAmount, a.TotalAmount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := names.compare(a.Customer, b.Customer); c != 0 {
			return c
		}
		return names.compare(a.Salesperson, b.Salesperson)
	})
	return rows
}

// ============================================================================
// VOLUME
// ============================================================================

// TopCustomersByVolume ranks customers by RFQ volume. mode picks the metric:
// total, converted or not-converted count. Customers with a zero metric are
// left out. Order: metric desc, name asc.
func TopCustomersByVolume(records []Record, mode StatusMode) []CustomerVolume {
	index := make(map[string]int)
	rows := []CustomerVolume{}
	for _, r := range records {
		if r.Customer == "" {
			continue
		}
		i, ok := index[r.Customer]
		if !ok {
			i = len(rows)
			index[r.Customer] = i
			rows = append(rows, CustomerVolume{Customer: r.Customer})
		}
		rows[i].Total++
		if r.IsConverted {
			rows[i].Converted++
		} else {
			rows[i].NotConverted++
		}
	}

	metric := volumeMetric(mode)
	kept := rows[:0]
	for _, row := range rows {
		if metric(row) > 0 {
			kept = append(kept, row)
		}
	}

	names := newNameOrder()
	slices.SortStableFunc(kept, func(a, b CustomerVolume) int {
		if c := cmp.Compare(metric(b), metric(a)); c != 0 {
			return c
		}
		return names.compare(a.Customer, b.Customer)
	})
	return kept
}

func volumeMetric(mode StatusMode) func(CustomerVolume) int {
	switch mode {
	case StatusConverted:
		return func(v CustomerVolume) int { return v.Converted }
	case StatusNotConverted:
		return func(v CustomerVolume) int { return v.NotConverted }
	default:
		return func(v CustomerVolume) int { return v.Total }
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// Top returns the first n rows, or all rows when n ≤ 0.
func Top[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}

// Rate returns part/total as a percentage, 0 when total is 0.
func Rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// nameOrder compares display names the way an Indonesian reader sorts them,
// falling back to byte order so distinct names never compare equal.
// A collator is not safe for concurrent use; build one per sort.
type nameOrder struct {
	collator *collate.Collator
}

func newNameOrder() *nameOrder {
	return &nameOrder{collator: collate.New(language.Indonesian, collate.IgnoreCase)}
}

func (o *nameOrder) compare(a, b string) int {
	if c := o.collator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
