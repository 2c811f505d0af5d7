package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// SUMMARY TESTS
// ============================================================================

func TestComputeKPIsScenario(t *testing.T) {
	records := []Record{
		rec("A", "Bob", "JADI OC", 0, nil),
		rec("A", "Bob", "TIDAK JADI OC", 0, nil),
	}
	assert.Equal(t, KPIs{TotalRFQ: 2, Converted: 1, NotConverted: 1, ConversionRate: 50.0}, ComputeKPIs(records))
}

func TestComputeKPIsEmpty(t *testing.T) {
	assert.Equal(t, KPIs{}, ComputeKPIs(nil))
}

func TestOrdersWithValue(t *testing.T) {
	records := recapRecords()
	records[0].SecondaryAmount = 500000
	records[2].SecondaryAmount = -1
	assert.Equal(t, 1, OrdersWithValue(records))
}

func TestDateBounds(t *testing.T) {
	first, last := DateBounds(recapRecords())
	require.NotNil(t, first)
	require.NotNil(t, last)
	assert.Equal(t, "2024-01-10", first.Format("2006-01-02"))
	assert.Equal(t, "2024-03-01", last.Format("2006-01-02"))

	first, last = DateBounds([]Record{rec("A", "", "", 0, nil)})
	assert.Nil(t, first)
	assert.Nil(t, last)
}

func TestFacetCounts(t *testing.T) {
	records := recapRecords()
	assert.Equal(t, CountByCustomer(records), FacetCounts(records, FacetCustomer))
	assert.Equal(t, CountBySalesperson(records), FacetCounts(records, FacetSalesperson))
	assert.Equal(t, StatusBreakdown(records), FacetCounts(records, FacetStatus))
}

func TestParseFacet(t *testing.T) {
	f, err := ParseFacet("Sales")
	require.NoError(t, err)
	assert.Equal(t, FacetSalesperson, f)

	f, err = ParseFacet("customer")
	require.NoError(t, err)
	assert.Equal(t, FacetCustomer, f)

	_, err = ParseFacet("region")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSummarizeAmounts(t *testing.T) {
	s := SummarizeAmounts(AmountByCustomerSalesperson(recapRecords()))
	assert.Equal(t, 5, s.Combinations)
	assert.Equal(t, 1050.0, s.Total)
	assert.Equal(t, 210.0, s.Mean)
	assert.Equal(t, 300.0, s.Median)
	assert.Equal(t, 400.0, s.Max)
	assert.Equal(t, 0.0, s.Min)

	assert.Equal(t, AmountSummary{}, SummarizeAmounts(nil))
}

func TestSummarizeConversion(t *testing.T) {
	s := SummarizeConversion(ConversionByCustomer(recapRecords()))
	assert.Equal(t, 3, s.Customers)
	assert.Equal(t, 2, s.WithConversion)
	assert.Equal(t, 1, s.WithoutConversion)
	assert.InDelta(t, 38.89, s.AverageRate, 0.01)

	assert.Equal(t, ConversionSummary{}, SummarizeConversion(nil))
}

func TestBuildInsights(t *testing.T) {
	in := BuildInsights(recapRecords(), 2)

	assert.Equal(t, 6, in.KPIs.TotalRFQ)
	assert.Equal(t, 3, in.KPIs.Converted)
	assert.Len(t, in.Pairs, 2)
	assert.Equal(t, 5, in.TotalPairs)
	assert.Len(t, in.Customers, 2)
	assert.Equal(t, 3, in.TotalCustomers)
	assert.Len(t, in.Salespeople, 2)
	assert.Equal(t, 3, in.TotalSalespeople)
	assert.Len(t, in.Conversion, 2)
	assert.Equal(t, 3, in.ConversionSummary.Customers, "summary covers every customer")
	assert.Len(t, in.Amounts, 2)
	assert.Equal(t, 1050.0, in.AmountSummary.Total)
	assert.Len(t, in.Statuses, 2)
	require.NotNil(t, in.FirstDate)
	assert.Equal(t, time.January, in.FirstDate.Month())
}

// ============================================================================
// FORMATTING
// ============================================================================

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1_250_000_000, "1.25B"},
		{3_500_000, "3.5M"},
		{750_000, "750.0K"},
		{1_000, "1.0K"},
		{999, "999"},
		{0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCompact(tt.in))
	}
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 500.0K", FormatRupiah(500_000))
	assert.Equal(t, "Rp 1.05B", FormatRupiah(1_050_000_000))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1.234.567", FormatCount(1_234_567))
	assert.Equal(t, "12", FormatCount(12))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "33.33%", FormatPercent(100.0/3))
	assert.Equal(t, "0.00%", FormatPercent(0))
}
