package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// QUERY DOCUMENT — JSON text → Query
// ============================================================================
// A saved or posted query. Dates are YYYY-MM-DD, gates are plain booleans,
// and the document may arrive wrapped in a ```json fence.
// ============================================================================

// QueryDocument is the JSON form of a Query.
type QueryDocument struct {
	Aggregate     string `json:"aggregate"`
	Mode          string `json:"mode,omitempty"`
	Breakdown     string `json:"breakdown,omitempty"`
	Limit         *int   `json:"limit,omitempty"`
	Customer      string `json:"customer,omitempty"`
	CustomerExact string `json:"customerExact,omitempty"`
	Sales         string `json:"sales,omitempty"`
	Status        string `json:"status,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	Converted     *bool  `json:"converted,omitempty"`
	NotConverted  *bool  `json:"notConverted,omitempty"`
}

// ParseQueryDocument decodes a query document. A missing aggregate defaults
// to AggCustomerSalespersonCount.
func ParseQueryDocument(text string) (*QueryDocument, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var doc QueryDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: query document: %v (document: %.200s)", ErrInvalidQuery, err, text)
	}
	if strings.TrimSpace(doc.Aggregate) == "" {
		doc.Aggregate = string(AggCustomerSalespersonCount)
	}
	return &doc, nil
}

// Query validates the document and builds the Query. Dates are read in loc.
// defaultLimit supplies the limit when the document has none; nil means all.
func (d *QueryDocument) Query(loc *time.Location, defaultLimit func(AggregateKind) int) (Query, error) {
	kind, err := ParseAggregateKind(d.Aggregate)
	if err != nil {
		return Query{}, err
	}
	mode, err := ParseStatusMode(d.Mode)
	if err != nil {
		return Query{}, err
	}
	dimension, err := ParseBreakdownDimension(d.Breakdown)
	if err != nil {
		return Query{}, err
	}
	spec, err := FilterInput{
		Customer:      d.Customer,
		CustomerExact: d.CustomerExact,
		Sales:         d.Sales,
		Status:        d.Status,
		From:          d.From,
		To:            d.To,
		Converted:     gateText(d.Converted),
		NotConverted:  gateText(d.NotConverted),
	}.Spec(loc)
	if err != nil {
		return Query{}, err
	}

	q := Query{Aggregate: kind, Filter: spec, Mode: mode, Breakdown: dimension}
	switch {
	case d.Limit != nil:
		if *d.Limit < 0 {
			return Query{}, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidQuery, *d.Limit)
		}
		q.Limit = *d.Limit
	case defaultLimit != nil:
		q.Limit = defaultLimit(kind)
	}
	return q, nil
}

func gateText(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
