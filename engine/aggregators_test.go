package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// AGGREGATOR TESTS
// ============================================================================

func TestCountByCustomerSalesperson(t *testing.T) {
	got := CountByCustomerSalesperson(recapRecords())
	assert.Equal(t, []PairCount{
		{"A", "Bob", 2},
		{"A", "Cy", 1},
		{"Beta Corp", "Cy", 1},
		{"Beta Corp", "Dee", 1},
		{"Gamma", "Bob", 1},
	}, got)
}

func TestCountByCustomerSalespersonSkipsMissingKeys(t *testing.T) {
	records := []Record{
		rec("A", "", "JADI OC", 0, nil),
		rec("", "Bob", "JADI OC", 0, nil),
		rec("A", "Bob", "JADI OC", 0, nil),
	}
	assert.Equal(t, []PairCount{{"A", "Bob", 1}}, CountByCustomerSalesperson(records))
}

func TestCountByCustomer(t *testing.T) {
	records := recapRecords()
	records = append(records, rec("", "Bob", "JADI OC", 0, nil))

	got := CountByCustomer(records)
	assert.Equal(t, []KeyCount{{"A", 3}, {"Beta Corp", 2}, {"Gamma", 1}}, got)

	total, withCustomer := 0, 0
	for _, k := range got {
		total += k.Count
	}
	for _, r := range records {
		if r.Customer != "" {
			withCustomer++
		}
	}
	assert.Equal(t, withCustomer, total, "every record with a customer is counted once")
}

func TestCountBySalesperson(t *testing.T) {
	got := CountBySalesperson(recapRecords())
	assert.Equal(t, []KeyCount{{"Bob", 3}, {"Cy", 2}, {"Dee", 1}}, got)
}

func TestStatusBreakdown(t *testing.T) {
	got := StatusBreakdown(recapRecords())
	assert.Equal(t, []KeyCount{{"JADI OC", 3}, {"TIDAK JADI OC", 2}}, got)
}

func TestNameTiebreakUsesCollation(t *testing.T) {
	records := []Record{
		rec("Zeta", "S", "", 0, nil),
		rec("alpha", "S", "", 0, nil),
		rec("Beta", "S", "", 0, nil),
		rec("Alpha", "S", "", 0, nil),
	}
	got := CountByCustomer(records)
	keys := make([]string, len(got))
	for i, k := range got {
		keys[i] = k.Key
	}
	assert.Equal(t, []string{"Alpha", "alpha", "Beta", "Zeta"}, keys)
}

func TestConversionByCustomer(t *testing.T) {
	got := ConversionByCustomer(recapRecords())
	require.Len(t, got, 3)

	assert.Equal(t, "A", got[0].Customer)
	assert.Equal(t, 3, got[0].Total)
	assert.Equal(t, 2, got[0].Converted)
	assert.Equal(t, 1, got[0].NotConverted)
	assert.InDelta(t, 66.67, got[0].ConversionRate, 0.01)

	assert.Equal(t, "Beta Corp", got[1].Customer)
	assert.Equal(t, 50.0, got[1].ConversionRate)

	assert.Equal(t, "Gamma", got[2].Customer)
	assert.Equal(t, 0.0, got[2].ConversionRate)
}

func TestConversionByCustomerScenario(t *testing.T) {
	records := []Record{
		rec("A", "Bob", "JADI OC", 0, nil),
		rec("A", "Bob", "TIDAK JADI OC", 0, nil),
	}
	got := ConversionByCustomer(records)
	assert.Equal(t, []ConversionRow{{Customer: "A", Total: 2, Converted: 1, NotConverted: 1, ConversionRate: 50}}, got)
}

func TestConversionByCustomerRoundedRatesTie(t *testing.T) {
	var records []Record
	// Small: 1 of 3. Large: 2 of 6. Both 33.33% once rounded.
	for i := 0; i < 3; i++ {
		status := "TIDAK JADI OC"
		if i == 0 {
			status = "JADI OC"
		}
		records = append(records, rec("Small", "S", status, 0, nil))
	}
	for i := 0; i < 6; i++ {
		status := "TIDAK JADI OC"
		if i < 2 {
			status = "JADI OC"
		}
		records = append(records, rec("Large", "S", status, 0, nil))
	}

	got := ConversionByCustomer(records)
	require.Len(t, got, 2)
	assert.Equal(t, "Large", got[0].Customer, "higher total wins a rate tie")
	assert.Equal(t, "Small", got[1].Customer)
}

func TestFilterConversionRows(t *testing.T) {
	rows := ConversionByCustomer(recapRecords())

	assert.Len(t, FilterConversionRows(rows, StatusBoth), 3)

	converted := FilterConversionRows(rows, StatusConverted)
	require.Len(t, converted, 2)
	assert.Equal(t, "A", converted[0].Customer)
	assert.InDelta(t, 66.67, converted[0].ConversionRate, 0.01, "rate keeps counting every RFQ")

	notConverted := FilterConversionRows(rows, StatusNotConverted)
	require.Len(t, notConverted, 3)
}

func TestAmountByCustomerSalesperson(t *testing.T) {
	got := AmountByCustomerSalesperson(recapRecords())
	assert.Equal(t, []PairAmount{
		{"Beta Corp", "Dee", 400, 1},
		{"A", "Bob", 300, 2},
		{"A", "Cy", 300, 1},
		{"Beta Corp", "Cy", 50, 1},
		{"Gamma", "Bob", 0, 1},
	}, got)
}

func TestAmountByCustomerSalespersonDecimalSum(t *testing.T) {
	var records []Record
	for i := 0; i < 10; i++ {
		records = append(records, rec("A", "Bob", "", 0.1, nil))
	}
	got := AmountByCustomerSalesperson(records)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].TotalAmount)
}

func TestTopCustomersByVolume(t *testing.T) {
	records := recapRecords()

	both := TopCustomersByVolume(records, StatusBoth)
	assert.Equal(t, []CustomerVolume{
		{"A", 3, 2, 1},
		{"Beta Corp", 2, 1, 1},
		{"Gamma", 1, 0, 1},
	}, both)

	converted := TopCustomersByVolume(records, StatusConverted)
	assert.Equal(t, []CustomerVolume{
		{"A", 3, 2, 1},
		{"Beta Corp", 2, 1, 1},
	}, converted, "customers without a converted RFQ are left out")

	notConverted := TopCustomersByVolume(records, StatusNotConverted)
	require.Len(t, notConverted, 3)
	assert.Equal(t, []string{"A", "Beta Corp", "Gamma"},
		[]string{notConverted[0].Customer, notConverted[1].Customer, notConverted[2].Customer},
		"equal counts fall back to name order")
}

func TestParseStatusMode(t *testing.T) {
	tests := []struct {
		in   string
		want StatusMode
	}{
		{"", StatusBoth},
		{"all", StatusBoth},
		{"converted", StatusConverted},
		{"JADI-OC", StatusConverted},
		{"not-converted", StatusNotConverted},
		{"tidak-jadi-oc", StatusNotConverted},
	}
	for _, tt := range tests {
		got, err := ParseStatusMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStatusMode("maybe")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestAggregatorsAreDeterministicAndPure(t *testing.T) {
	records := recapRecords()
	before := append([]Record(nil), records...)

	reversed := make([]Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	assert.Equal(t, CountByCustomerSalesperson(records), CountByCustomerSalesperson(reversed))
	assert.Equal(t, CountByCustomer(records), CountByCustomer(reversed))
	assert.Equal(t, ConversionByCustomer(records), ConversionByCustomer(reversed))
	assert.Equal(t, AmountByCustomerSalesperson(records), AmountByCustomerSalesperson(reversed))
	assert.Equal(t, TopCustomersByVolume(records, StatusBoth), TopCustomersByVolume(reversed, StatusBoth))

	assert.Equal(t, before, records)
	assert.Equal(t, customers(before), customers(records))
}

func TestAggregatorsOnEmptyInput(t *testing.T) {
	assert.NotNil(t, CountByCustomerSalesperson(nil))
	assert.NotNil(t, CountByCustomer(nil))
	assert.NotNil(t, ConversionByCustomer(nil))
	assert.NotNil(t, AmountByCustomerSalesperson(nil))
	assert.NotNil(t, TopCustomersByVolume(nil, StatusBoth))
	assert.Empty(t, CountByCustomer(nil))
}

func TestTop(t *testing.T) {
	rows := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, Top(rows, 2))
	assert.Equal(t, rows, Top(rows, 0))
	assert.Equal(t, rows, Top(rows, 10))
}

func TestCustomerGroupingKeysAgree(t *testing.T) {
	records := []Record{
		{Customer: "PT Maju", Salesperson: "Bob", IsConverted: true},
		{Customer: " PT Maju", Salesperson: "Bob"},
		{Customer: "PT Maju", Salesperson: "Cy"},
	}

	counts := CountByCustomer(records)
	volumes := TopCustomersByVolume(records, StatusBoth)
	conversion := ConversionByCustomer(records)
	require.Len(t, counts, 2)
	require.Len(t, volumes, 2)
	require.Len(t, conversion, 2)

	for i := range counts {
		assert.Equal(t, counts[i].Key, volumes[i].Customer)
		assert.Equal(t, counts[i].Count, volumes[i].Total)
	}
	assert.Equal(t, "PT Maju", volumes[0].Customer)
	assert.Equal(t, 2, volumes[0].Total)
}
