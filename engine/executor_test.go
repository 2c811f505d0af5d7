package engine

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// EXECUTOR TESTS
// ============================================================================

func TestExecuteUnknownAggregate(t *testing.T) {
	_, err := Execute(recapRecords(), Query{Aggregate: "revenue-by-moon"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestExecuteInvalidFilter(t *testing.T) {
	_, err := Execute(recapRecords(), Query{
		Aggregate: AggCustomerCount,
		Filter: FilterSpec{
			DateFrom: day(2024, time.May, 1),
			DateTo:   day(2024, time.April, 1),
		},
	})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestExecuteCustomerSalespersonCount(t *testing.T) {
	res, err := Execute(recapRecords(), Query{Aggregate: AggCustomerSalespersonCount, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, AggCustomerSalespersonCount, res.Aggregate)
	assert.Equal(t, "RFQ per Customer per Sales", res.Title)
	assert.Equal(t, 6, res.MatchedRecords)
	assert.Equal(t, 6, res.TotalRecords)
	assert.Equal(t, 5, res.TotalGroups)

	rows, ok := res.Rows.([]PairCount)
	require.True(t, ok)
	assert.Equal(t, []PairCount{{"A", "Bob", 2}, {"A", "Cy", 1}}, rows)

	assert.Equal(t,
		"Top Customer: A (3 RFQ, 50.0%) | Total: 6 RFQ (6 from 6, 100.0%) | Showing 1 out of 3 customers",
		res.Reply)

	require.NotNil(t, res.TableData)
	assert.Len(t, res.TableData.Columns, 3)
	assert.Equal(t, [][]string{{"A", "Bob", "2"}, {"A", "Cy", "1"}}, res.TableData.Rows)
	assert.Equal(t, "3", res.TableData.Summary.Values["count"])
}

func TestExecuteFiltersBeforeAggregating(t *testing.T) {
	res, err := Execute(recapRecords(), Query{
		Aggregate: AggCustomerCount,
		Filter:    FilterSpec{SalespersonExact: "bob"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.MatchedRecords)
	assert.Equal(t, []KeyCount{{"A", 2}, {"Gamma", 1}}, res.Rows)
	assert.Equal(t, "Top: A (2 RFQ, 66.7%) | Total: 3 RFQ across 2 customers", res.Reply)
}

func TestExecuteConversionKeepsFullRates(t *testing.T) {
	res, err := Execute(recapRecords(), Query{
		Aggregate: AggCustomerConversion,
		Filter:    FilterSpec{IncludeNotConverted: Bool(false)},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, res.MatchedRecords, "conversion gate does not narrow the records")
	rows, ok := res.Rows.([]ConversionRow)
	require.True(t, ok)
	require.Len(t, rows, 2, "only customers with a converted RFQ are listed")
	assert.Equal(t, "A", rows[0].Customer)
	assert.Equal(t, 3, rows[0].Total)
	assert.Equal(t, "Beta Corp", rows[1].Customer)
	assert.Equal(t, 50.0, rows[1].ConversionRate)
	assert.Equal(t, "Showing 2 out of 2 customers | Average Conversion Rate: 58.33%", res.Reply)
}

func TestExecuteConversionExplicitMode(t *testing.T) {
	res, err := Execute(recapRecords(), Query{Aggregate: AggCustomerConversion, Mode: StatusNotConverted, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalGroups)
	assert.Len(t, res.Rows, 1)
}

func TestExecuteAmount(t *testing.T) {
	res, err := Execute(recapRecords(), Query{Aggregate: AggCustomerSalespersonAmount, Limit: 1})
	require.NoError(t, err)

	assert.Equal(t, []PairAmount{{"Beta Corp", "Dee", 400, 1}}, res.Rows)
	assert.Equal(t, "Total combinations: 5 | Total amount: Rp 1.1K | Showing 1 out of 5 combinations", res.Reply)
	assert.Equal(t, []string{"Beta Corp", "Dee", "Rp 400", "1"}, res.TableData.Rows[0])
}

func TestExecuteVolume(t *testing.T) {
	res, err := Execute(recapRecords(), Query{Aggregate: AggCustomerVolume, Mode: StatusConverted})
	require.NoError(t, err)

	assert.Equal(t, []CustomerVolume{{"A", 3, 2, 1}, {"Beta Corp", 2, 1, 1}}, res.Rows)
	assert.Equal(t, "Showing 2 out of 2 customers | Total: 3 RFQ (3 JADI OC)", res.Reply)
	assert.Len(t, res.TableData.Columns, 4)
}

func TestExecuteVolumeGateSelectsMode(t *testing.T) {
	res, err := Execute(recapRecords(), Query{
		Aggregate: AggCustomerVolume,
		Filter:    FilterSpec{IncludeNotConverted: Bool(false)},
	})
	require.NoError(t, err)

	assert.Equal(t, []CustomerVolume{{"A", 3, 2, 1}, {"Beta Corp", 2, 1, 1}}, res.Rows)
	assert.Equal(t, 6, res.MatchedRecords, "gates do not drop records")

	res, err = Execute(recapRecords(), Query{
		Aggregate: AggCustomerVolume,
		Filter:    FilterSpec{IncludeConverted: Bool(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, []CustomerVolume{{"A", 3, 2, 1}, {"Beta Corp", 2, 1, 1}, {"Gamma", 1, 0, 1}}, res.Rows)
}

func TestSplitConversionGate(t *testing.T) {
	tests := []struct {
		name     string
		filter   FilterSpec
		mode     StatusMode
		wantMode StatusMode
	}{
		{"no gates", FilterSpec{}, "", StatusBoth},
		{"converted only", FilterSpec{IncludeNotConverted: Bool(false)}, StatusBoth, StatusConverted},
		{"not converted only", FilterSpec{IncludeConverted: Bool(false)}, StatusBoth, StatusNotConverted},
		{"explicit mode wins", FilterSpec{IncludeConverted: Bool(false)}, StatusConverted, StatusConverted},
		{"both open", FilterSpec{IncludeConverted: Bool(true), IncludeNotConverted: Bool(true)}, StatusBoth, StatusBoth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, mode := SplitConversionGate(tt.filter, tt.mode)
			assert.Equal(t, tt.wantMode, mode)
			assert.Nil(t, f.IncludeConverted)
			assert.Nil(t, f.IncludeNotConverted)
		})
	}
	assert.True(t, AggCustomerVolume.GatesSelectMode())
	assert.True(t, AggCustomerConversion.GatesSelectMode())
	assert.False(t, AggCustomerCount.GatesSelectMode())
}

func TestExecuteStatusBreakdown(t *testing.T) {
	res, err := Execute(recapRecords(), Query{Aggregate: AggStatusBreakdown})
	require.NoError(t, err)
	assert.Equal(t, []KeyCount{{"JADI OC", 3}, {"TIDAK JADI OC", 2}}, res.Rows)
	assert.Equal(t, "Status", res.TableData.Columns[0].Label)
}

func TestExecuteNoMatches(t *testing.T) {
	res, err := Execute(recapRecords(), Query{
		Aggregate: AggSalespersonCount,
		Filter:    FilterSpec{CustomerExact: "Nobody"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.MatchedRecords)
	assert.Empty(t, res.Rows)
	assert.Equal(t, noMatchReply, res.Reply)
	assert.NotNil(t, res.TableData.Rows)
}

func TestExecuteLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Execute(recapRecords(), Query{Aggregate: AggCustomerCount}, WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "executed query")
	assert.Contains(t, buf.String(), "aggregate=customer-count")
}

func TestParseAggregateKind(t *testing.T) {
	for _, kind := range AggregateKinds {
		got, err := ParseAggregateKind(" " + string(kind) + " ")
		require.NoError(t, err)
		assert.Equal(t, kind, got)
		assert.NotEqual(t, string(kind), kind.Title())
	}

	_, err := ParseAggregateKind("nope")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
