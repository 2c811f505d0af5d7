package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TEXT BUILDER — One-line narrative replies per aggregate
// ============================================================================
// Replies are computed from the full (unlimited) aggregate so "Showing n out
// of m" and totals stay truthful when the rows are cut to a limit.
// ============================================================================

const noMatchReply = "No records match your query filters. Try broadening your search."

// PairCountReply describes customer × salesperson counts:
//
//	Top Customer: X (N RFQ, p%) | Total: T RFQ (T from M, p%) | Showing n out of m customers
//
// matched is the number of records the query looked at.
func PairCountReply(pairs []PairCount, shownCustomers, matched int) string {
	customers := totalsBy(pairs, pairCustomer)
	if len(customers) == 0 {
		return noMatchReply
	}

	total := 0
	for _, c := range customers {
		total += c.Count
	}
	top := customers[0]

	var b strings.Builder
	fmt.Fprintf(&b, "Top Customer: %s (%d RFQ, %.1f%%)", top.Key, top.Count, Rate(top.Count, total))
	fmt.Fprintf(&b, " | Total: %d RFQ (%d from %d, %.1f%%)", total, total, matched, Rate(total, matched))
	if shownCustomers < len(customers) {
		fmt.Fprintf(&b, " | Showing %d out of %d customers", shownCustomers, len(customers))
	}
	return b.String()
}

// KeyCountReply describes a single-key count such as RFQs per customer.
// noun is the plural of what the key is ("customers", "sales").
func KeyCountReply(rows []KeyCount, shown int, noun string) string {
	if len(rows) == 0 {
		return noMatchReply
	}

	total := 0
	for _, r := range rows {
		total += r.Count
	}
	top := rows[0]

	reply := fmt.Sprintf("Top: %s (%d RFQ, %.1f%%) | Total: %d RFQ across %d %s",
		top.Key, top.Count, Rate(top.Count, total), total, len(rows), noun)
	if shown < len(rows) {
		reply += fmt.Sprintf(" | Showing %d out of %d %s", shown, len(rows), noun)
	}
	return reply
}

// ConversionReply averages the rates of the displayed customers:
//
//	Showing n out of m customers | Average Conversion Rate: x%
func ConversionReply(shown []ConversionRow, totalCustomers int) string {
	if totalCustomers == 0 {
		return noMatchReply
	}

	var sum float64
	for _, row := range shown {
		sum += row.ConversionRate
	}
	var avg float64
	if len(shown) > 0 {
		avg = sum / float64(len(shown))
	}
	return fmt.Sprintf("Showing %d out of %d customers | Average Conversion Rate: %s",
		len(shown), totalCustomers, FormatPercent(avg))
}

// AmountReply totals pair amounts:
//
//	Total combinations: N | Total amount: Rp X
func AmountReply(pairs []PairAmount, shown int) string {
	if len(pairs) == 0 {
		return noMatchReply
	}

	s := SummarizeAmounts(pairs)
	reply := fmt.Sprintf("Total combinations: %s | Total amount: %s",
		FormatCount(s.Combinations), FormatRupiah(s.Total))
	if shown < len(pairs) {
		reply += fmt.Sprintf(" | Showing %d out of %d combinations", shown, len(pairs))
	}
	return reply
}

// VolumeReply totals customer volumes for the selected status mode:
//
//	Showing n out of m customers | Total: T RFQ (c JADI OC, u TIDAK JADI OC)
func VolumeReply(rows []CustomerVolume, shown int, mode StatusMode) string {
	if len(rows) == 0 {
		return noMatchReply
	}

	var total, converted, notConverted int
	for _, r := range rows {
		total += r.Total
		converted += r.Converted
		notConverted += r.NotConverted
	}

	reply := fmt.Sprintf("Showing %d out of %d customers", shown, len(rows))
	switch mode {
	case StatusConverted:
		reply += fmt.Sprintf(" | Total: %d RFQ (%d JADI OC)", converted, converted)
	case StatusNotConverted:
		reply += fmt.Sprintf(" | Total: %d RFQ (%d TIDAK JADI OC)", notConverted, notConverted)
	default:
		reply += fmt.Sprintf(" | Total: %d RFQ (%d JADI OC, %d TIDAK JADI OC)", total, converted, notConverted)
	}
	return reply
}

// BreakdownReply describes a breakdown:
//
//	PT Maju: 3 RFQ across 2 sales | Largest: Bob (2 RFQ) | Showing n out of m
//
// customer is empty for a breakdown over all customers.
func BreakdownReply(customer string, dimension BreakdownDimension, rows []BreakdownRow, shown int) string {
	if len(rows) == 0 {
		return noMatchReply
	}

	total := 0
	largest := rows[0]
	for _, r := range rows {
		total += r.Total
		if r.Total > largest.Total {
			largest = r
		}
	}

	var b strings.Builder
	if customer != "" {
		fmt.Fprintf(&b, "%s: ", customer)
	}
	fmt.Fprintf(&b, "%d RFQ across %d %s", total, len(rows), dimension.plural())
	fmt.Fprintf(&b, " | Largest: %s (%d RFQ)", largest.Key, largest.Total)
	if shown < len(rows) {
		fmt.Fprintf(&b, " | Showing %d out of %d", shown, len(rows))
	}
	return b.String()
}

// KPIReply is the one-line headline of a record set.
func KPIReply(k KPIs) string {
	if k.TotalRFQ == 0 {
		return noMatchReply
	}
	return fmt.Sprintf("%s RFQ | %s converted | %s not converted | Conversion rate %s",
		FormatCount(k.TotalRFQ), FormatCount(k.Converted), FormatCount(k.NotConverted),
		FormatPercent(k.ConversionRate))
}
