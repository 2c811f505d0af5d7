// Package commands implements the rekap subcommands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/dataset"
	"github.com/spektr-org/rekap/engine"
	"github.com/spektr-org/rekap/internal/cli/output"
	"github.com/spektr-org/rekap/internal/config"
)

// CommandContext holds what every command needs.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext reads the config and logger the root command stored in
// the context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cfg.Output),
	}
}

// LoadOptions are the dataset options implied by the config.
func (c *CommandContext) LoadOptions() []dataset.Option {
	return []dataset.Option{
		dataset.WithLogger(c.Logger),
		dataset.WithSheet(c.Cfg.Sheet),
		dataset.WithEngineOptions(c.Cfg.EngineOptions()...),
	}
}

// LoadDataset loads the configured recap file.
func (c *CommandContext) LoadDataset(cmd *cobra.Command) (*dataset.Dataset, error) {
	return dataset.Load(cmd.Context(), c.Cfg.File, c.LoadOptions()...)
}

// ============================================================================
// FILTER FLAGS
// ============================================================================

// filterFlags binds the record filter flags shared by query, records and export.
type filterFlags struct {
	customer      string
	customerExact string
	sales         string
	status        string
	from          string
	to            string
	converted     bool
	notConverted  bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.customer, "customer", "", "Customer name contains (case-insensitive)")
	flags.StringVar(&f.customerExact, "customer-exact", "", "Exact customer name")
	flags.StringVar(&f.sales, "sales", "", "Salesperson (case-insensitive exact match)")
	flags.StringVar(&f.status, "status", "", "Status contains (case-insensitive)")
	flags.StringVar(&f.from, "from", "", "First date, YYYY-MM-DD")
	flags.StringVar(&f.to, "to", "", "Last date, YYYY-MM-DD (whole day)")
	flags.BoolVar(&f.converted, "converted", true, "Include converted RFQs")
	flags.BoolVar(&f.notConverted, "not-converted", true, "Include not-converted RFQs")
}

// spec parses the flags. The gates count only when set on the command line.
func (f *filterFlags) spec(cmd *cobra.Command, cfg *config.Config) (engine.FilterSpec, error) {
	in := engine.FilterInput{
		Customer:      f.customer,
		CustomerExact: f.customerExact,
		Sales:         f.sales,
		Status:        f.status,
		From:          f.from,
		To:            f.to,
	}
	if cmd.Flags().Changed("converted") {
		in.Converted = boolText(f.converted)
	}
	if cmd.Flags().Changed("not-converted") {
		in.NotConverted = boolText(f.notConverted)
	}
	loc, err := cfg.Location()
	if err != nil {
		return engine.FilterSpec{}, err
	}
	return in.Spec(loc)
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
