package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/engine"
)

// NewRecordsCommand creates the records command.
func NewRecordsCommand() *cobra.Command {
	var (
		filters filterFlags
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the records behind an aggregate",
		Long: `List the normalized records that pass the filters, in file order.
Use it to drill down into a number shown by query or summary.`,
		Example: `  rekap records --customer "PT Maju" --sales Bob
  rekap records --status "TIDAK JADI" --limit 20 -o csv`,
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

			matched := engine.Filter(ds.Records(), spec)
			shown := engine.Top(matched, limit)
			if cc.Renderer.IsJSON() {
				return cc.Renderer.JSON(map[string]any{
					"matched": len(matched),
					"total":   ds.Len(),
					"records": shown,
				})
			}

			title := fmt.Sprintf("Records (%d of %d)", len(matched), ds.Len())
			if err := cc.Renderer.Table(engine.RecordsTable(title, shown)); err != nil {
				return err
			}
			if len(shown) < len(matched) {
				cc.Renderer.Note("Showing %d out of %d records", len(shown), len(matched))
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records (0 = all)")
	return cmd
}
