package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/engine"
	"github.com/spektr-org/rekap/export"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "export <report.xlsx>",
		Short: "Write the KPIs and every aggregate table to a workbook",
		Long: `Write an .xlsx workbook with one sheet for the KPIs and one sheet per
aggregate. Tables are not limited: every row is written.`,
		Example: `  rekap export report.xlsx
  rekap export q1.xlsx --from 2025-01-01 --to 2025-03-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			spec, err := filters.spec(cmd, cc.Cfg)
			if err != nil {
				return err
			}
			ds, err := cc.LoadDataset(cmd)
			if err != nil {
				return err
			}

			tables, err := exportTables(ds.Records(), spec, cc)
			if err != nil {
				return err
			}

			path := args[0]
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := export.WriteWorkbook(f, tables); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", path, err)
			}

			cc.Logger.Info("workbook written", "path", path, "sheets", len(tables))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sheets to %s\n", len(tables), path)
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}

// exportTables runs every aggregate without a limit.
func exportTables(records []engine.Record, spec engine.FilterSpec, cc *CommandContext) ([]*engine.TableData, error) {
	filtered := engine.Filter(records, spec)
	tables := []*engine.TableData{
		engine.KPITable(engine.ComputeKPIs(filtered), engine.OrdersWithValue(filtered)),
	}
	for _, kind := range engine.AggregateKinds {
		result, err := engine.Execute(records, engine.Query{Aggregate: kind, Filter: spec},
			engine.WithLogger(cc.Logger))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		tables = append(tables, result.TableData)
	}
	return tables, nil
}
