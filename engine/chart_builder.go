package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// CHART BUILDER — Aggregate rows → ChartConfig
// ============================================================================
// Charts are render-agnostic descriptions; nothing here draws.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

const (
	convertedColor    = "#10B981"
	notConvertedColor = "#EF4444"
)

// Orientation picks which side of a customer × salesperson chart is the axis.
type Orientation string

const (
	// OrientationCustomerSalesperson puts customers on the axis, one stack
	// segment per salesperson.
	OrientationCustomerSalesperson Orientation = "customer-salesperson"
	// OrientationSalespersonCustomer puts salespeople on the axis.
	OrientationSalespersonCustomer Orientation = "salesperson-customer"
)

// ParseOrientation accepts "customer-salesperson" (default) and
// "salesperson-customer", plus the short "customer-sales"/"sales-customer".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "customer-salesperson", "customer-sales":
		return OrientationCustomerSalesperson, nil
	case "salesperson-customer", "sales-customer":
		return OrientationSalespersonCustomer, nil
	default:
		return "", fmt.Errorf("%w: unknown orientation %q", ErrInvalidQuery, s)
	}
}

// ============================================================================
// STACKED CUSTOMER × SALESPERSON
// ============================================================================

// BuildStackedChart pivots pair counts into a stacked bar chart. The axis
// keeps the top limit keys by total (limit ≤ 0 keeps all); series are the
// other side's keys that occur among them, ordered by their visible total.
// Returns nil when there is nothing to draw.
func BuildStackedChart(pairs []PairCount, orientation Orientation, limit int) *ChartConfig {
	if len(pairs) == 0 {
		return nil
	}

	axisOf, stackOf := pairCustomer, pairSalesperson
	axisLabel, stackLabel, axisNoun := "Customer", "Sales", "customers"
	if orientation == OrientationSalespersonCustomer {
		axisOf, stackOf = pairSalesperson, pairCustomer
		axisLabel, stackLabel, axisNoun = "Sales", "Customer", "sales"
	}

	axisTotals := totalsBy(pairs, axisOf)
	allAxis := len(axisTotals)
	axisTotals = Top(axisTotals, limit)

	shown := make(map[string]int, len(axisTotals))
	for i, k := range axisTotals {
		shown[k.Key] = i
	}

	visible := make([]PairCount, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := shown[axisOf(p)]; ok {
			visible = append(visible, p)
		}
	}
	stackTotals := totalsBy(visible, stackOf)

	series := make([]ChartSeries, 0, len(stackTotals))
	seriesIndex := make(map[string]int, len(stackTotals))
	for i, k := range stackTotals {
		points := make([]ChartPoint, len(axisTotals))
		for j, a := range axisTotals {
			points[j] = ChartPoint{Label: a.Key}
		}
		seriesIndex[k.Key] = i
		series = append(series, ChartSeries{
			Name:  k.Key,
			Data:  points,
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	for _, p := range visible {
		s := seriesIndex[stackOf(p)]
		series[s].Data[shown[axisOf(p)]].Value += float64(p.Count)
	}

	total := 0
	for _, k := range axisTotals {
		total += k.Count
	}

	return &ChartConfig{
		ChartType:  "stacked-bar",
		Title:      fmt.Sprintf("RFQ per %s per %s", axisLabel, stackLabel),
		XAxis:      axisLabel,
		YAxis:      "RFQ Count",
		Series:     series,
		Colors:     assignColors(len(series)),
		ShowLegend: true,
		ShowGrid:   true,
		Summary: fmt.Sprintf("Showing %d out of %d %s | %d RFQ",
			len(axisTotals), allAxis, axisNoun, total),
	}
}

// ============================================================================
// VOLUME AND CONVERSION
// ============================================================================

// BuildVolumeChart stacks converted and not-converted counts per customer.
// Only the series selected by mode are drawn.
func BuildVolumeChart(rows []CustomerVolume, mode StatusMode) *ChartConfig {
	if len(rows) == 0 {
		return nil
	}

	converted := ChartSeries{Name: "JADI OC", Color: convertedColor}
	notConverted := ChartSeries{Name: "TIDAK JADI OC", Color: notConvertedColor}
	for _, r := range rows {
		converted.Data = append(converted.Data, ChartPoint{Label: r.Customer, Value: float64(r.Converted)})
		notConverted.Data = append(notConverted.Data, ChartPoint{Label: r.Customer, Value: float64(r.NotConverted)})
	}

	var series []ChartSeries
	switch mode {
	case StatusConverted:
		series = []ChartSeries{converted}
	case StatusNotConverted:
		series = []ChartSeries{notConverted}
	default:
		series = []ChartSeries{converted, notConverted}
	}

	colors := make([]string, len(series))
	for i, s := range series {
		colors[i] = s.Color
	}

	return &ChartConfig{
		ChartType:  "stacked-bar",
		Title:      "Top Customers by RFQ Volume",
		XAxis:      "Customer",
		YAxis:      "RFQ Count",
		Series:     series,
		Colors:     colors,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// BuildConversionChart plots the conversion rate per customer.
func BuildConversionChart(rows []ConversionRow) *ChartConfig {
	if len(rows) == 0 {
		return nil
	}

	points := make([]ChartPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, ChartPoint{Label: r.Customer, Value: RoundTo2(r.ConversionRate)})
	}

	return &ChartConfig{
		ChartType:  "bar",
		Title:      "Conversion Rate per Customer",
		XAxis:      "Customer",
		YAxis:      "Conversion %",
		Series:     []ChartSeries{{Name: "Conversion %", Data: points, Color: convertedColor}},
		Colors:     []string{convertedColor},
		ShowLegend: false,
		ShowGrid:   true,
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func pairCustomer(p PairCount) string    { return p.Customer }
func pairSalesperson(p PairCount) string { return p.Salesperson }

// totalsBy sums pair counts per key, ordered count desc then name.
func totalsBy(pairs []PairCount, key func(PairCount) string) []KeyCount {
	index := make(map[string]int)
	rows := []KeyCount{}
	for _, p := range pairs {
		k := key(p)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, KeyCount{Key: k})
		}
		rows[i].Count += p.Count
	}
	sortKeyCounts(rows)
	return rows
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
