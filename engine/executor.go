package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// EXECUTOR — Query dispatcher
// ============================================================================
// Entry point: Execute(records, query, opts...)
//
// Pipeline:
//   1. Validate the query
//   2. Filter the canonical records → new slice
//   3. Aggregate (full, unlimited)
//   4. Apply the display mode and limit
//   5. Build reply text and TableData
//
// Every query recomputes from the records it is given. Nothing is cached.
// ============================================================================

// AggregateKind names one of the aggregate views.
type AggregateKind string

const (
	AggCustomerSalespersonCount  AggregateKind = "customer-salesperson-count"
	AggCustomerCount             AggregateKind = "customer-count"
	AggSalespersonCount          AggregateKind = "salesperson-count"
	AggCustomerConversion        AggregateKind = "customer-conversion"
	AggCustomerSalespersonAmount AggregateKind = "customer-salesperson-amount"
	AggCustomerVolume            AggregateKind = "customer-volume"
	AggStatusBreakdown           AggregateKind = "status-breakdown"
	AggMonthCount                AggregateKind = "rfq-per-month"
	AggCustomerBreakdown         AggregateKind = "customer-breakdown"
)

// AggregateKinds lists every kind in presentation order.
var AggregateKinds = []AggregateKind{
	AggCustomerSalespersonCount,
	AggCustomerCount,
	AggSalespersonCount,
	AggCustomerConversion,
	AggCustomerSalespersonAmount,
	AggCustomerVolume,
	AggStatusBreakdown,
	AggMonthCount,
	AggCustomerBreakdown,
}

var aggregateTitles = map[AggregateKind]string{
	AggCustomerSalespersonCount:  "RFQ per Customer per Sales",
	AggCustomerCount:             "Customers with the Most RFQs",
	AggSalespersonCount:          "RFQ per Sales",
	AggCustomerConversion:        "RFQ to Order Conversion per Customer",
	AggCustomerSalespersonAmount: "Total RFQ Amount per Customer per Sales",
	AggCustomerVolume:            "Top Customers by RFQ Volume",
	AggStatusBreakdown:           "RFQ per Status",
	AggMonthCount:                "RFQ per Month",
	AggCustomerBreakdown:         "RFQ Breakdown per Customer",
}

// ParseAggregateKind validates s against AggregateKinds.
func ParseAggregateKind(s string) (AggregateKind, error) {
	kind := AggregateKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := aggregateTitles[kind]; !ok {
		return "", fmt.Errorf("%w: unknown aggregate %q", ErrInvalidQuery, s)
	}
	return kind, nil
}

// Title is the display heading of the aggregate.
func (k AggregateKind) Title() string {
	if t, ok := aggregateTitles[k]; ok {
		return t
	}
	return string(k)
}

// KeyColumn is the key column of a single-key count aggregate.
func (k AggregateKind) KeyColumn() Column {
	switch k {
	case AggSalespersonCount:
		return colSalesperson
	case AggStatusBreakdown:
		return Column{Key: "status", Label: "Status", Type: "text", Align: "left"}
	default:
		return colCustomer
	}
}

// Query is one request against the canonical records.
type Query struct {
	Aggregate AggregateKind `json:"aggregate"`
	Filter    FilterSpec    `json:"filter"`
	// Mode selects the status side for customer-volume and customer-conversion.
	Mode StatusMode `json:"mode,omitempty"`
	// Limit caps the returned rows; ≤ 0 returns all.
	Limit int `json:"limit,omitempty"`
	// Breakdown is the dimension of customer-breakdown. Empty means sales.
	// The customer is Filter.CustomerExact, or the top customer when unset.
	Breakdown BreakdownDimension `json:"breakdown,omitempty"`
}

// Execute runs q against records and returns a render-ready Result.
//
// For customer-conversion and customer-volume the conversion gates of the
// filter do not narrow the records: rates and counts always cover every RFQ
// of a customer, and the gates only pick the display mode.
func Execute(records []Record, q Query, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	if _, ok := aggregateTitles[q.Aggregate]; !ok {
		return nil, fmt.Errorf("%w: unknown aggregate %q", ErrInvalidQuery, q.Aggregate)
	}
	if err := q.Filter.Validate(); err != nil {
		return nil, err
	}
	mode := q.Mode
	if mode == "" {
		mode = StatusBoth
	}
	dimension, err := ParseBreakdownDimension(string(q.Breakdown))
	if err != nil {
		return nil, err
	}

	filter := q.Filter
	if q.Aggregate.GatesSelectMode() {
		filter, mode = SplitConversionGate(filter, mode)
	}
	filtered := Filter(records, filter)

	result := &Result{
		Aggregate:      q.Aggregate,
		Title:          q.Aggregate.Title(),
		MatchedRecords: len(filtered),
		TotalRecords:   len(records),
	}

	switch q.Aggregate {
	case AggCustomerSalespersonCount:
		all := CountByCustomerSalesperson(filtered)
		rows := Top(all, q.Limit)
		result.TotalGroups = len(all)
		result.Rows = rows
		result.Reply = PairCountReply(all, distinctCustomers(rows), len(filtered))

	case AggCustomerCount, AggSalespersonCount, AggStatusBreakdown:
		var all []KeyCount
		noun := "customers"
		switch q.Aggregate {
		case AggSalespersonCount:
			all, noun = CountBySalesperson(filtered), "sales"
		case AggStatusBreakdown:
			all, noun = StatusBreakdown(filtered), "statuses"
		default:
			all = CountByCustomer(filtered)
		}
		rows := Top(all, q.Limit)
		result.TotalGroups = len(all)
		result.Rows = rows
		result.Reply = KeyCountReply(all, len(rows), noun)

	case AggCustomerConversion:
		listed := FilterConversionRows(ConversionByCustomer(filtered), mode)
		rows := Top(listed, q.Limit)
		result.TotalGroups = len(listed)
		result.Rows = rows
		result.Reply = ConversionReply(rows, len(listed))

	case AggCustomerSalespersonAmount:
		all := AmountByCustomerSalesperson(filtered)
		rows := Top(all, q.Limit)
		result.TotalGroups = len(all)
		result.Rows = rows
		result.Reply = AmountReply(all, len(rows))

	case AggCustomerVolume:
		all := TopCustomersByVolume(filtered, mode)
		rows := Top(all, q.Limit)
		result.TotalGroups = len(all)
		result.Rows = rows
		result.Reply = VolumeReply(all, len(rows), mode)

	case AggMonthCount:
		all := Breakdown(filtered, ByMonth)
		rows := Top(all, q.Limit)
		result.Breakdown = ByMonth
		result.TotalGroups = len(all)
		result.Rows = rows
		result.Reply = BreakdownReply("", ByMonth, all, len(rows))

	case AggCustomerBreakdown:
		customer := q.Filter.CustomerExact
		if customer == "" {
			customer = TopCustomer(filtered)
		}
		all := CustomerBreakdown(filtered, customer, dimension)
		rows := Top(all, q.Limit)
		result.Customer = customer
		result.Breakdown = dimension
		result.TotalGroups = len(all)
		result.Rows = rows
		result.Reply = BreakdownReply(customer, dimension, all, len(rows))
		if customer != "" {
			result.Title = fmt.Sprintf("RFQ Breakdown by %s: %s", dimension.Label(), customer)
		}
	}

	if result.Breakdown != "" {
		result.TableData = BuildBreakdownTable(result.Title, result.Breakdown, result.Rows.([]BreakdownRow))
	} else {
		result.TableData = BuildTable(q.Aggregate, result.Rows)
	}

	cfg.Logger.Debug("executed query",
		"aggregate", q.Aggregate,
		"mode", mode,
		"limit", q.Limit,
		"matched", result.MatchedRecords,
		"total", result.TotalRecords,
		"groups", result.TotalGroups,
	)
	return result, nil
}

// GatesSelectMode reports whether the conversion gates of a query pick the
// display mode of k instead of filtering its records.
func (k AggregateKind) GatesSelectMode() bool {
	return k == AggCustomerConversion || k == AggCustomerVolume
}

// SplitConversionGate moves a one-sided conversion gate from the filter into
// the display mode. An explicit mode wins over the gate.
func SplitConversionGate(f FilterSpec, mode StatusMode) (FilterSpec, StatusMode) {
	if mode == "" {
		mode = StatusBoth
	}
	converted, notConverted := gate(f.IncludeConverted), gate(f.IncludeNotConverted)
	f.IncludeConverted, f.IncludeNotConverted = nil, nil

	if mode != StatusBoth {
		return f, mode
	}
	switch {
	case converted && !notConverted:
		return f, StatusConverted
	case notConverted && !converted:
		return f, StatusNotConverted
	default:
		return f, StatusBoth
	}
}

func distinctCustomers(rows []PairCount) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.Customer] = struct{}{}
	}
	return len(seen)
}
