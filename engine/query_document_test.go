package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryDocument(t *testing.T) {
	doc, err := ParseQueryDocument("```json\n{\"aggregate\":\"customer-volume\",\"mode\":\"converted\",\"limit\":5,\"from\":\"2024-01-01\",\"notConverted\":false}\n```")
	require.NoError(t, err)

	q, err := doc.Query(time.UTC, nil)
	require.NoError(t, err)
	assert.Equal(t, AggCustomerVolume, q.Aggregate)
	assert.Equal(t, StatusConverted, q.Mode)
	assert.Equal(t, 5, q.Limit)
	require.NotNil(t, q.Filter.DateFrom)
	assert.Equal(t, 2024, q.Filter.DateFrom.Year())
	require.NotNil(t, q.Filter.IncludeNotConverted)
	assert.False(t, *q.Filter.IncludeNotConverted)
	assert.Nil(t, q.Filter.IncludeConverted)
}

func TestQueryDocumentDefaults(t *testing.T) {
	doc, err := ParseQueryDocument(`{}`)
	require.NoError(t, err)
	assert.Equal(t, string(AggCustomerSalespersonCount), doc.Aggregate)

	q, err := doc.Query(nil, func(AggregateKind) int { return 15 })
	require.NoError(t, err)
	assert.Equal(t, StatusBoth, q.Mode)
	assert.Equal(t, 15, q.Limit)

	zero := 0
	doc.Limit = &zero
	q, err = doc.Query(nil, func(AggregateKind) int { return 15 })
	require.NoError(t, err)
	assert.Zero(t, q.Limit, "an explicit 0 means all rows")
}

func TestQueryDocumentErrors(t *testing.T) {
	_, err := ParseQueryDocument("not json")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	negative := -1
	tests := []struct {
		name string
		doc  QueryDocument
	}{
		{"aggregate", QueryDocument{Aggregate: "revenue"}},
		{"mode", QueryDocument{Aggregate: "customer-volume", Mode: "maybe"}},
		{"date", QueryDocument{Aggregate: "customer-count", To: "31/01/2024"}},
		{"limit", QueryDocument{Aggregate: "customer-count", Limit: &negative}},
		{"breakdown", QueryDocument{Aggregate: "customer-breakdown", Breakdown: "colour"}},
		{"gates", QueryDocument{Aggregate: "customer-count", Converted: Bool(false), NotConverted: Bool(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Query(time.UTC, nil)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestQueryDocumentExecutes(t *testing.T) {
	doc, err := ParseQueryDocument(`{"aggregate":"salesperson-count","customer":"a"}`)
	require.NoError(t, err)
	q, err := doc.Query(time.UTC, nil)
	require.NoError(t, err)

	result, err := Execute(recapRecords(), q)
	require.NoError(t, err)
	assert.Equal(t, AggSalespersonCount, result.Aggregate)
	assert.NotEmpty(t, result.Rows)
}

func TestQueryDocumentBreakdown(t *testing.T) {
	doc, err := ParseQueryDocument(`{"aggregate":"customer-breakdown","customerExact":"A","breakdown":"month"}`)
	require.NoError(t, err)
	q, err := doc.Query(time.UTC, nil)
	require.NoError(t, err)
	assert.Equal(t, ByMonth, q.Breakdown)

	result, err := Execute(recapRecords(), q)
	require.NoError(t, err)
	assert.Equal(t, "A", result.Customer)
	rows := result.Rows.([]BreakdownRow)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-02", rows[0].Key)
	assert.Equal(t, "2024-01", rows[1].Key)
}
