package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/engine"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		filters  filterFlags
		mode     string
		by       string
		limit    int
		specFile string
	)

	kinds := make([]string, len(engine.AggregateKinds))
	for i, k := range engine.AggregateKinds {
		kinds[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:   "query <aggregate>",
		Short: "Run one aggregate over the filtered records",
		Long: fmt.Sprintf(`Run one aggregate over the records that pass the filters.

Aggregates:
  %s

--mode selects converted, not-converted or both for customer-volume and
customer-conversion. --by picks the dimension of customer-breakdown
(salesperson, price-range, remark, month, status); the customer is --customer-exact
or, when unset, the customer with the most RFQs. --limit 0 lists every row.

--spec reads a JSON query document instead of flags ("-" reads stdin):
  {"aggregate":"customer-volume","mode":"converted","limit":5,"from":"2025-01-01"}`, strings.Join(kinds, "\n  ")),
		Example: `  rekap query customer-salesperson-count --limit 10
  rekap query customer-conversion --not-converted=false
  rekap query customer-volume --mode converted --from 2025-01-01
  rekap query customer-salesperson-amount --sales Andi -o csv
  rekap query customer-breakdown --customer-exact "PT Maju" --by price-range
  rekap query rfq-per-month --from 2025-01-01
  rekap query --spec saved-query.json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if specFile != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)

			var (
				q   engine.Query
				err error
			)
			if specFile != "" {
				q, err = documentQuery(cmd, specFile, cc)
			} else {
				q, err = flagQuery(cmd, args[0], mode, by, limit, &filters, cc)
			}
			if err != nil {
				return err
			}

			ds, err := cc.LoadDataset(cmd)
			if err != nil {
				return err
			}
			result, err := engine.Execute(ds.Records(), q, engine.WithLogger(cc.Logger))
			if err != nil {
				return err
			}

			if cc.Renderer.IsJSON() {
				return cc.Renderer.JSON(result)
			}
			if err := cc.Renderer.Table(result.TableData); err != nil {
				return err
			}
			cc.Renderer.Note("%s", result.Reply)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "both", "Status side: both, converted, not-converted")
	cmd.Flags().StringVar(&by, "by", "salesperson", "Dimension of customer-breakdown")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (default from limits.*; 0 = all)")
	cmd.Flags().StringVar(&specFile, "spec", "", "Read the query from a JSON document (- for stdin)")
	_ = cmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"both", "converted", "not-converted"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("by", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		dims := make([]string, len(engine.BreakdownDimensions))
		for i, d := range engine.BreakdownDimensions {
			dims[i] = string(d)
		}
		return dims, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func flagQuery(cmd *cobra.Command, name, mode, by string, limit int, filters *filterFlags, cc *CommandContext) (engine.Query, error) {
	kind, err := engine.ParseAggregateKind(name)
	if err != nil {
		return engine.Query{}, err
	}
	statusMode, err := engine.ParseStatusMode(mode)
	if err != nil {
		return engine.Query{}, err
	}
	dimension, err := engine.ParseBreakdownDimension(by)
	if err != nil {
		return engine.Query{}, err
	}
	spec, err := filters.spec(cmd, cc.Cfg)
	if err != nil {
		return engine.Query{}, err
	}
	if !cmd.Flags().Changed("limit") {
		limit = cc.Cfg.Limit(kind)
	}
	return engine.Query{Aggregate: kind, Filter: spec, Mode: statusMode, Breakdown: dimension, Limit: limit}, nil
}

// documentQuery reads a QueryDocument from path, or stdin for "-".
func documentQuery(cmd *cobra.Command, path string, cc *CommandContext) (engine.Query, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return engine.Query{}, fmt.Errorf("read query document: %w", err)
	}

	doc, err := engine.ParseQueryDocument(string(data))
	if err != nil {
		return engine.Query{}, err
	}
	loc, err := cc.Cfg.Location()
	if err != nil {
		return engine.Query{}, err
	}
	cc.Logger.Debug("query document", "path", path, "aggregate", doc.Aggregate)
	return doc.Query(loc, cc.Cfg.Limit)
}
