package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
)

// ============================================================================
// SUMMARIES — Headline numbers and insight bundles
// ============================================================================

// ComputeKPIs counts converted and not-converted RFQs.
func ComputeKPIs(records []Record) KPIs {
	k := KPIs{TotalRFQ: len(records)}
	for _, r := range records {
		if r.IsConverted {
			k.Converted++
		}
	}
	k.NotConverted = k.TotalRFQ - k.Converted
	k.ConversionRate = Rate(k.Converted, k.TotalRFQ)
	return k
}

// OrdersWithValue counts records carrying a positive total amount.
func OrdersWithValue(records []Record) int {
	n := 0
	for _, r := range records {
		if r.SecondaryAmount > 0 {
			n++
		}
	}
	return n
}

// DateBounds returns the earliest and latest record dates, nil when no record
// has a date.
func DateBounds(records []Record) (first, last *time.Time) {
	for _, r := range records {
		if r.Date == nil {
			continue
		}
		if first == nil || r.Date.Before(*first) {
			first = r.Date
		}
		if last == nil || r.Date.After(*last) {
			last = r.Date
		}
	}
	return first, last
}

// ============================================================================
// FACETS — Filter option lists
// ============================================================================

// Facet names a record field that can be offered as a filter option list.
type Facet string

const (
	FacetCustomer    Facet = "customer"
	FacetSalesperson Facet = "salesperson"
	FacetStatus      Facet = "status"
)

// ParseFacet accepts "customer", "salesperson"/"sales" and "status".
func ParseFacet(s string) (Facet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer", "customers":
		return FacetCustomer, nil
	case "salesperson", "sales":
		return FacetSalesperson, nil
	case "status":
		return FacetStatus, nil
	default:
		return "", fmt.Errorf("%w: unknown facet %q", ErrInvalidQuery, s)
	}
}

// FacetCounts lists the distinct non-empty values of field with their counts.
func FacetCounts(records []Record, field Facet) []KeyCount {
	switch field {
	case FacetSalesperson:
		return CountBySalesperson(records)
	case FacetStatus:
		return StatusBreakdown(records)
	default:
		return CountByCustomer(records)
	}
}

// ============================================================================
// AMOUNT AND CONVERSION SUMMARIES
// ============================================================================

// AmountSummary describes the distribution of pair amounts.
type AmountSummary struct {
	Combinations int     `json:"combinations"`
	Total        float64 `json:"total"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Max          float64 `json:"max"`
	Min          float64 `json:"min"`
}

// SummarizeAmounts computes totals over pair amounts. Empty input is all zero.
func SummarizeAmounts(pairs []PairAmount) AmountSummary {
	s := AmountSummary{Combinations: len(pairs)}
	if len(pairs) == 0 {
		return s
	}

	data := make(stats.Float64Data, len(pairs))
	for i, p := range pairs {
		data[i] = p.TotalAmount
	}
	s.Total, _ = stats.Sum(data)
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.Max, _ = stats.Max(data)
	s.Min, _ = stats.Min(data)
	return s
}

// ConversionSummary describes conversion across customers.
type ConversionSummary struct {
	Customers         int     `json:"customers"`
	WithConversion    int     `json:"withConversion"`
	WithoutConversion int     `json:"withoutConversion"`
	AverageRate       float64 `json:"averageRate"`
}

// SummarizeConversion counts customers with and without a converted RFQ and
// averages their rates.
func SummarizeConversion(rows []ConversionRow) ConversionSummary {
	s := ConversionSummary{Customers: len(rows)}
	if len(rows) == 0 {
		return s
	}

	rates := make(stats.Float64Data, len(rows))
	for i, row := range rows {
		rates[i] = row.ConversionRate
		if row.Converted > 0 {
			s.WithConversion++
		}
	}
	s.WithoutConversion = s.Customers - s.WithConversion
	s.AverageRate, _ = stats.Mean(rates)
	return s
}

// ============================================================================
// INSIGHTS — Everything the overview screen shows at once
// ============================================================================

// Insights bundles KPIs with the top-N list of every aggregate.
// The Total* counters are taken before the lists are cut to the limit.
type Insights struct {
	KPIs            KPIs       `json:"kpis"`
	OrdersWithValue int        `json:"ordersWithValue"`
	FirstDate       *time.Time `json:"firstDate,omitempty"`
	LastDate        *time.Time `json:"lastDate,omitempty"`

	Pairs      []PairCount `json:"pairs"`
	TotalPairs int         `json:"totalPairs"`

	Customers      []KeyCount `json:"customers"`
	TotalCustomers int        `json:"totalCustomers"`

	Salespeople      []KeyCount `json:"salespeople"`
	TotalSalespeople int        `json:"totalSalespeople"`

	Conversion        []ConversionRow   `json:"conversion"`
	ConversionSummary ConversionSummary `json:"conversionSummary"`

	Amounts       []PairAmount  `json:"amounts"`
	AmountSummary AmountSummary `json:"amountSummary"`

	Statuses []KeyCount `json:"statuses"`
}

// BuildInsights computes the overview for records, keeping limit rows per list.
func BuildInsights(records []Record, limit int) *Insights {
	first, last := DateBounds(records)
	pairs := CountByCustomerSalesperson(records)
	customers := CountByCustomer(records)
	salespeople := CountBySalesperson(records)
	conversion := ConversionByCustomer(records)
	amounts := AmountByCustomerSalesperson(records)

	return &Insights{
		KPIs:              ComputeKPIs(records),
		OrdersWithValue:   OrdersWithValue(records),
		FirstDate:         first,
		LastDate:          last,
		Pairs:             Top(pairs, limit),
		TotalPairs:        len(pairs),
		Customers:         Top(customers, limit),
		TotalCustomers:    len(customers),
		Salespeople:       Top(salespeople, limit),
		TotalSalespeople:  len(salespeople),
		Conversion:        Top(conversion, limit),
		ConversionSummary: SummarizeConversion(conversion),
		Amounts:           Top(amounts, limit),
		AmountSummary:     SummarizeAmounts(amounts),
		Statuses:          StatusBreakdown(records),
	}
}
