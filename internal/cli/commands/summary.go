package commands

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/engine"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	var (
		filters filterFlags
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show KPIs and the top rows of every aggregate",
		Long: `Show the recap overview: RFQ totals and conversion rate, followed by
the top customer/sales pairs, customers, sales, conversion rates, amounts
and the status breakdown.`,
		Example: `  rekap summary
  rekap summary --from 2025-01-01 --to 2025-03-31 --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			spec, err := filters.spec(cmd, cc.Cfg)
			if err != nil {
				return err
			}
			ds, err := cc.LoadDataset(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("limit") {
				limit = cc.Cfg.Limits.Insights
			}
			records := engine.Filter(ds.Records(), spec)
			insights := engine.BuildInsights(records, limit)
			if cc.Renderer.IsJSON() {
				return cc.Renderer.JSON(insights)
			}

			cc.Renderer.Note("%s", engine.KPIReply(insights.KPIs))
			if insights.FirstDate != nil && insights.LastDate != nil {
				cc.Renderer.Note("Period: %s to %s",
					insights.FirstDate.Format(engine.DayLayout), insights.LastDate.Format(engine.DayLayout))
			}

			tables := []*engine.TableData{
				engine.KPITable(insights.KPIs, insights.OrdersWithValue),
				engine.BuildTable(engine.AggCustomerSalespersonCount, insights.Pairs),
				engine.BuildTable(engine.AggCustomerCount, insights.Customers),
				engine.BuildTable(engine.AggSalespersonCount, insights.Salespeople),
				engine.BuildTable(engine.AggCustomerConversion, insights.Conversion),
				engine.BuildTable(engine.AggCustomerSalespersonAmount, insights.Amounts),
				engine.BuildTable(engine.AggStatusBreakdown, insights.Statuses),
			}
			for _, td := range tables {
				if err := cc.Renderer.Table(td); err != nil {
					return err
				}
			}

			cs := insights.ConversionSummary
			cc.Renderer.Note("Customers with a conversion: %s of %s | Average conversion rate: %s",
				engine.FormatCount(cs.WithConversion), engine.FormatCount(cs.Customers), engine.FormatPercent(cs.AverageRate))
			as := insights.AmountSummary
			cc.Renderer.Note("Amount per pair: median %s | mean %s | max %s",
				engine.FormatRupiah(as.Median), engine.FormatRupiah(as.Mean), engine.FormatRupiah(as.Max))
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Rows per list (default from limits.insights)")
	return cmd
}
