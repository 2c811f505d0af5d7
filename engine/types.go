package engine

import (
	"time"

	"github.com/spektr-org/rekap/tabular"
)

// ============================================================================
// ENGINE TYPES — Canonical RFQ records and aggregate rows
// ============================================================================
// Records are produced once per load by Normalize and never mutated after.
// Every aggregate row is a fresh value built per query.
// ============================================================================

// ============================================================================
// RECORD — One normalized RFQ line
// ============================================================================

// Record is a single request for quotation.
type Record struct {
	RFQID           string     `json:"rfqId,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	Customer        string     `json:"customer"`
	Salesperson     string     `json:"salesperson"`
	PrimaryAmount   float64    `json:"primaryAmount"`
	SecondaryAmount float64    `json:"secondaryAmount"`
	EffectiveAmount float64    `json:"effectiveAmount"`
	StatusRaw       string     `json:"status"`
	IsConverted     bool       `json:"isConverted"`
	Remark          string     `json:"remark,omitempty"`

	// OriginalRow is shared with the source table for drill-down views.
	// Treat as read-only.
	OriginalRow tabular.Row `json:"originalRow,omitempty"`
}

// ============================================================================
// AGGREGATE ROWS
// ============================================================================

// PairCount counts RFQs per customer × salesperson.
type PairCount struct {
	Customer    string `json:"customer"`
	Salesperson string `json:"salesperson"`
	Count       int    `json:"count"`
}

// KeyCount counts RFQs per single key (customer, salesperson, status...).
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PairAmount sums the effective amount per customer × salesperson.
type PairAmount struct {
	Customer    string  `json:"customer"`
	Salesperson string  `json:"salesperson"`
	TotalAmount float64 `json:"totalAmount"`
	Count       int     `json:"count"`
}

// ConversionRow is the conversion breakdown of one customer.
// ConversionRate is a percentage in [0, 100].
type ConversionRow struct {
	Customer       string  `json:"customer"`
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	NotConverted   int     `json:"notConverted"`
	ConversionRate float64 `json:"conversionRate"`
}

// CustomerVolume is the RFQ volume of one customer split by conversion.
type CustomerVolume struct {
	Customer     string `json:"customer"`
	Total        int    `json:"total"`
	Converted    int    `json:"converted"`
	NotConverted int    `json:"notConverted"`
}

// BreakdownRow counts the RFQs sharing one value of a breakdown dimension.
// Customer is set when the breakdown belongs to a single customer.
type BreakdownRow struct {
	Customer     string  `json:"customer,omitempty"`
	Key          string  `json:"key"`
	Total        int     `json:"total"`
	Converted    int     `json:"converted"`
	NotConverted int     `json:"notConverted"`
	TotalAmount  float64 `json:"totalAmount"`
}

// KPIs are the headline numbers of a record set.
type KPIs struct {
	TotalRFQ       int     `json:"totalRfq"`
	Converted      int     `json:"converted"`
	NotConverted   int     `json:"notConverted"`
	ConversionRate float64 `json:"conversionRate"`
}

// ============================================================================
// RESULT — Render-ready output of Execute
// ============================================================================

// Result is the output of one Query.
type Result struct {
	Aggregate      AggregateKind `json:"aggregate"`
	Title          string        `json:"title"`
	Reply          string        `json:"reply"`
	MatchedRecords int           `json:"matchedRecords"`
	TotalRecords   int           `json:"totalRecords"`
	TotalGroups    int           `json:"totalGroups"`

	// Customer and Breakdown describe customer-breakdown and rfq-per-month.
	Customer  string             `json:"customer,omitempty"`
	Breakdown BreakdownDimension `json:"breakdown,omitempty"`

	// Rows holds the typed aggregate rows (e.g. []PairCount), after limiting.
	Rows      any        `json:"rows"`
	TableData *TableData `json:"tableData,omitempty"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
	Summary    string        `json:"summary,omitempty"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "currency", "percent"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
