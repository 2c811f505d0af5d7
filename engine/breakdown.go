package engine

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================================
// BREAKDOWN — RFQ counts of one record set along a single dimension
// ============================================================================
// Used for the drill-down of one customer (by sales, price range, remark,
// month or status) and for the RFQ-per-month timeline.
//
// Every record lands in a group: records without a value for the dimension
// are counted under a placeholder key such as "(No Date)".
// ============================================================================

// BreakdownDimension is the field a breakdown groups by.
type BreakdownDimension string

const (
	BySalesperson BreakdownDimension = "salesperson"
	ByPriceRange  BreakdownDimension = "price-range"
	ByRemark      BreakdownDimension = "remark"
	ByMonth       BreakdownDimension = "month"
	ByStatus      BreakdownDimension = "status"
)

// BreakdownDimensions lists every dimension in presentation order.
var BreakdownDimensions = []BreakdownDimension{BySalesperson, ByPriceRange, ByRemark, ByMonth, ByStatus}

// Placeholder keys for records without a value.
const (
	NoSalesKey  = "(No Sales)"
	NoPriceKey  = "No Price"
	NoRemarkKey = "(No Remark)"
	NoDateKey   = "(No Date)"
	NoStatusKey = "(No Status)"
)

// MonthLayout formats the month keys of ByMonth.
const MonthLayout = "2006-01"

// ParseBreakdownDimension accepts the API/CLI spellings of a dimension,
// including the recap column names. Empty input means BySalesperson.
func ParseBreakdownDimension(s string) (BreakdownDimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "salesperson", "sales", "marketing", "markerting":
		return BySalesperson, nil
	case "price-range", "price", "harga":
		return ByPriceRange, nil
	case "remark", "karoseri":
		return ByRemark, nil
	case "month", "date":
		return ByMonth, nil
	case "status", "keterangan":
		return ByStatus, nil
	default:
		return "", fmt.Errorf("%w: unknown breakdown %q", ErrInvalidQuery, s)
	}
}

// Label is the column heading of the dimension.
func (d BreakdownDimension) Label() string {
	switch d {
	case ByPriceRange:
		return "Price Range"
	case ByRemark:
		return "Remark"
	case ByMonth:
		return "Month"
	case ByStatus:
		return "Status"
	default:
		return "Sales"
	}
}

// plural names the groups of the dimension in replies.
func (d BreakdownDimension) plural() string {
	switch d {
	case ByPriceRange:
		return "price ranges"
	case ByRemark:
		return "remarks"
	case ByMonth:
		return "months"
	case ByStatus:
		return "statuses"
	default:
		return "sales"
	}
}

// Price buckets of ByPriceRange, upper bounds exclusive.
var priceRanges = []struct {
	below float64
	label string
}{
	{100_000_000, "< 100M"},
	{300_000_000, "100M - 300M"},
	{500_000_000, "300M - 500M"},
	{1_000_000_000, "500M - 1B"},
}

const topPriceRange = "> 1B"

// PriceRange buckets a quoted price. A price of 0 has no bucket.
func PriceRange(amount float64) string {
	if amount <= 0 {
		return NoPriceKey
	}
	for _, r := range priceRanges {
		if amount < r.below {
			return r.label
		}
	}
	return topPriceRange
}

// priceRangeRank orders the buckets from no price up to > 1B.
func priceRangeRank(label string) int {
	if label == NoPriceKey {
		return 0
	}
	for i, r := range priceRanges {
		if r.label == label {
			return i + 1
		}
	}
	return len(priceRanges) + 1
}

// breakdownKey returns the group key of r along d.
func breakdownKey(r Record, d BreakdownDimension) string {
	switch d {
	case ByPriceRange:
		return PriceRange(r.PrimaryAmount)
	case ByRemark:
		return orPlaceholder(r.Remark, NoRemarkKey)
	case ByMonth:
		if r.Date == nil {
			return NoDateKey
		}
		return r.Date.Format(MonthLayout)
	case ByStatus:
		return orPlaceholder(r.StatusRaw, NoStatusKey)
	default:
		return orPlaceholder(r.Salesperson, NoSalesKey)
	}
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// Breakdown counts records per value of d. TotalAmount sums the quoted
// price (PrimaryAmount) of each group.
//
// Order by dimension:
//   - ByPriceRange: bucket order, no price first
//   - ByMonth: latest month first, undated last
//   - otherwise: total desc, key asc
func Breakdown(records []Record, d BreakdownDimension) []BreakdownRow {
	index := make(map[string]int)
	rows := []BreakdownRow{}
	var sums []decimal.Decimal
	for _, r := range records {
		k := breakdownKey(r, d)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, BreakdownRow{Key: k})
			sums = append(sums, decimal.Zero)
		}
		rows[i].Total++
		if r.IsConverted {
			rows[i].Converted++
		} else {
			rows[i].NotConverted++
		}
		sums[i] = sums[i].Add(decimal.NewFromFloat(r.PrimaryAmount))
	}
	for i := range rows {
		rows[i].TotalAmount = sums[i].InexactFloat64()
	}

	switch d {
	case ByPriceRange:
		slices.SortStableFunc(rows, func(a, b BreakdownRow) int {
			return cmp.Compare(priceRangeRank(a.Key), priceRangeRank(b.Key))
		})
	case ByMonth:
		slices.SortStableFunc(rows, func(a, b BreakdownRow) int {
			if (a.Key == NoDateKey) != (b.Key == NoDateKey) {
				if a.Key == NoDateKey {
					return 1
				}
				return -1
			}
			return strings.Compare(b.Key, a.Key)
		})
	default:
		names := newNameOrder()
		slices.SortStableFunc(rows, func(a, b BreakdownRow) int {
			if c := cmp.Compare(b.Total, a.Total); c != 0 {
				return c
			}
			return names.compare(a.Key, b.Key)
		})
	}
	return rows
}

// CustomerBreakdown breaks down the RFQs of one customer along d.
// customer is matched exactly against Record.Customer; an empty customer
// has no breakdown.
func CustomerBreakdown(records []Record, customer string, d BreakdownDimension) []BreakdownRow {
	if customer == "" {
		return []BreakdownRow{}
	}
	var own []Record
	for _, r := range records {
		if r.Customer == customer {
			own = append(own, r)
		}
	}
	rows := Breakdown(own, d)
	for i := range rows {
		rows[i].Customer = customer
	}
	return rows
}

// TopCustomer returns the customer with the most RFQs, or "" when no record
// names a customer. Ties resolve as in CountByCustomer.
func TopCustomer(records []Record) string {
	counts := CountByCustomer(records)
	if len(counts) == 0 {
		return ""
	}
	return counts[0].Key
}
