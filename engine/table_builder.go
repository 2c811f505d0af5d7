package engine

import (
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Aggregate rows → TableData
// ============================================================================
// Cells are display strings. Count columns use Indonesian grouping, amount
// columns the compact Rupiah form, rate columns two decimals.
// ============================================================================

var (
	colCustomer    = Column{Key: "customer", Label: "Customer", Type: "text", Align: "left"}
	colSalesperson = Column{Key: "salesperson", Label: "Sales", Type: "text", Align: "left"}
	colCount       = Column{Key: "count", Label: "RFQ Count", Type: "number", Align: "right"}
)

// BuildTable renders the typed rows of an aggregate. Unknown row types give an
// empty table.
func BuildTable(kind AggregateKind, rows any) *TableData {
	title := kind.Title()
	switch rows := rows.(type) {
	case []PairCount:
		return pairCountTable(title, rows)
	case []KeyCount:
		return keyCountTable(title, kind.KeyColumn(), rows)
	case []ConversionRow:
		return conversionTable(title, rows)
	case []PairAmount:
		return amountTable(title, rows)
	case []CustomerVolume:
		return volumeTable(title, rows)
	case []BreakdownRow:
		dimension := BySalesperson
		if kind == AggMonthCount {
			dimension = ByMonth
		}
		return BuildBreakdownTable(title, dimension, rows)
	default:
		return &TableData{Title: title, Columns: []Column{}, Rows: [][]string{}}
	}
}

func pairCountTable(title string, rows []PairCount) *TableData {
	out := make([][]string, 0, len(rows))
	total := 0
	for _, r := range rows {
		out = append(out, []string{r.Customer, r.Salesperson, FormatCount(r.Count)})
		total += r.Count
	}
	return &TableData{
		Title:   title,
		Columns: []Column{colCustomer, colSalesperson, colCount},
		Rows:    out,
		Summary: &Summary{
			Label:  "Total",
			Values: map[string]string{"count": FormatCount(total)},
		},
	}
}

func keyCountTable(title string, key Column, rows []KeyCount) *TableData {
	out := make([][]string, 0, len(rows))
	total := 0
	for _, r := range rows {
		out = append(out, []string{r.Key, FormatCount(r.Count)})
		total += r.Count
	}
	return &TableData{
		Title:   title,
		Columns: []Column{key, colCount},
		Rows:    out,
		Summary: &Summary{
			Label:  "Total",
			Values: map[string]string{"count": FormatCount(total)},
		},
	}
}

func conversionTable(title string, rows []ConversionRow) *TableData {
	out := make([][]string, 0, len(rows))
	var total, converted int
	for _, r := range rows {
		out = append(out, []string{
			r.Customer,
			FormatCount(r.Total),
			FormatCount(r.Converted),
			FormatCount(r.NotConverted),
			FormatPercent(r.ConversionRate),
		})
		total += r.Total
		converted += r.Converted
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			colCustomer,
			{Key: "total", Label: "Total RFQ", Type: "number", Align: "center"},
			{Key: "converted", Label: "Converted", Type: "number", Align: "center"},
			{Key: "notConverted", Label: "Not Converted", Type: "number", Align: "center"},
			{Key: "conversionRate", Label: "% Conversion", Type: "percent", Align: "right"},
		},
		Rows: out,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"total":          FormatCount(total),
				"converted":      FormatCount(converted),
				"notConverted":   FormatCount(total - converted),
				"conversionRate": FormatPercent(Rate(converted, total)),
			},
		},
	}
}

func amountTable(title string, rows []PairAmount) *TableData {
	out := make([][]string, 0, len(rows))
	count := 0
	var amount float64
	for _, r := range rows {
		out = append(out, []string{
			r.Customer,
			r.Salesperson,
			FormatRupiah(r.TotalAmount),
			FormatCount(r.Count),
		})
		count += r.Count
		amount += r.TotalAmount
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			colCustomer,
			colSalesperson,
			{Key: "totalAmount", Label: "Total Amount", Type: "currency", Align: "right"},
			colCount,
		},
		Rows: out,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"totalAmount": FormatRupiah(amount),
				"count":       FormatCount(count),
			},
		},
	}
}

func volumeTable(title string, rows []CustomerVolume) *TableData {
	out := make([][]string, 0, len(rows))
	var total, converted, notConverted int
	for _, r := range rows {
		out = append(out, []string{
			r.Customer,
			FormatCount(r.Total),
			FormatCount(r.Converted),
			FormatCount(r.NotConverted),
		})
		total += r.Total
		converted += r.Converted
		notConverted += r.NotConverted
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			colCustomer,
			{Key: "total", Label: "Total RFQ", Type: "number", Align: "right"},
			{Key: "converted", Label: "JADI OC", Type: "number", Align: "right"},
			{Key: "notConverted", Label: "TIDAK JADI OC", Type: "number", Align: "right"},
		},
		Rows: out,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"total":        FormatCount(total),
				"converted":    FormatCount(converted),
				"notConverted": FormatCount(notConverted),
			},
		},
	}
}

// BuildBreakdownTable renders breakdown rows. The customer column appears
// when the rows belong to one customer; the amount column only for price
// ranges.
func BuildBreakdownTable(title string, dimension BreakdownDimension, rows []BreakdownRow) *TableData {
	withCustomer := len(rows) > 0 && rows[0].Customer != ""
	withAmount := dimension == ByPriceRange

	var columns []Column
	if withCustomer {
		columns = append(columns, colCustomer)
	}
	columns = append(columns,
		Column{Key: "key", Label: dimension.Label(), Type: "text", Align: "left"},
		Column{Key: "total", Label: "Total RFQ", Type: "number", Align: "center"},
		Column{Key: "converted", Label: "JADI OC", Type: "number", Align: "center"},
		Column{Key: "notConverted", Label: "TIDAK JADI OC", Type: "number", Align: "center"},
	)
	if withAmount {
		columns = append(columns, Column{Key: "totalAmount", Label: "Total Amount", Type: "currency", Align: "right"})
	}

	out := make([][]string, 0, len(rows))
	var total, converted, notConverted int
	var amount float64
	for _, r := range rows {
		var cells []string
		if withCustomer {
			cells = append(cells, r.Customer)
		}
		cells = append(cells, r.Key, FormatCount(r.Total), FormatCount(r.Converted), FormatCount(r.NotConverted))
		if withAmount {
			cells = append(cells, FormatRupiah(r.TotalAmount))
		}
		out = append(out, cells)
		total += r.Total
		converted += r.Converted
		notConverted += r.NotConverted
		amount += r.TotalAmount
	}

	values := map[string]string{
		"total":        FormatCount(total),
		"converted":    FormatCount(converted),
		"notConverted": FormatCount(notConverted),
	}
	if withAmount {
		values["totalAmount"] = FormatRupiah(amount)
	}
	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    out,
		Summary: &Summary{Label: "Total", Values: values},
	}
}

// ============================================================================
// RECORD TABLE — Row per record (drill-down)
// ============================================================================

// RecordsTable lists records with their normalized fields.
func RecordsTable(title string, records []Record) *TableData {
	columns := []Column{
		{Key: "rfqId", Label: "RFQ", Type: "text", Align: "left"},
		{Key: "date", Label: "Date", Type: "text", Align: "left"},
		colCustomer,
		colSalesperson,
		{Key: "effectiveAmount", Label: "Amount", Type: "currency", Align: "right"},
		{Key: "status", Label: "Status", Type: "text", Align: "left"},
	}

	rows := make([][]string, 0, len(records))
	var amount float64
	for _, r := range records {
		date := ""
		if r.Date != nil {
			date = r.Date.Format("2006-01-02")
		}
		rows = append(rows, []string{
			r.RFQID,
			date,
			r.Customer,
			r.Salesperson,
			strconv.FormatFloat(r.EffectiveAmount, 'f', -1, 64),
			r.StatusRaw,
		})
		amount += r.EffectiveAmount
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Total (" + FormatCount(len(records)) + " records)",
			Values: map[string]string{
				"effectiveAmount": FormatRupiah(amount),
			},
		},
	}
}

// KPITable renders headline numbers as a two-column table.
func KPITable(k KPIs, ordersWithValue int) *TableData {
	return &TableData{
		Title: "Key Figures",
		Columns: []Column{
			{Key: "metric", Label: "Metric", Type: "text", Align: "left"},
			{Key: "value", Label: "Value", Type: "text", Align: "right"},
		},
		Rows: [][]string{
			{"Total RFQ", FormatCount(k.TotalRFQ)},
			{"Converted (JADI OC)", FormatCount(k.Converted)},
			{"Not converted (TIDAK JADI OC)", FormatCount(k.NotConverted)},
			{"Conversion rate", FormatPercent(k.ConversionRate)},
			{"Orders with value", FormatCount(ordersWithValue)},
		},
	}
}
