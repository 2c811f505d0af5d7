// Package rekap normalizes an RFQ recap spreadsheet and aggregates it into
// sales reports.
//
// Usage:
//
//	import "github.com/spektr-org/rekap/dataset"
//	import "github.com/spektr-org/rekap/engine"
//
//	ds, err := dataset.Load(ctx, "RECAP PENAWARAN 2025.xlsx")
//	result, err := engine.Execute(ds.Records(), engine.Query{
//	    Aggregate: engine.AggCustomerConversion,
//	    Limit:     10,
//	})
//
// The tabular package reads CSV and XLSX files into raw rows. The schema
// package resolves which header plays which role. The engine normalizes rows
// into records and computes filters, rankings, KPIs and chart configs.
// Nothing here calls an external service; all computation is local.
package rekap
