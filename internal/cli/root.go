// Package cli provides the command-line interface for rekap.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/internal/cli/commands"
	"github.com/spektr-org/rekap/internal/config"
	"github.com/spektr-org/rekap/tabular"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "rekap",
		Short: "rekap - RFQ recap analytics",
		Long: `rekap reads an RFQ recap spreadsheet (CSV or XLSX), works out which
column is the customer, salesperson, amount, status and date, and reports
RFQ counts, conversion rates and amounts per customer and salesperson.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			loaded, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger := config.NewLogger(loaded.Config, cmd.ErrOrStderr())
			if loaded.FileUsed != "" {
				logger.Debug("using config file", "path", loaded.FileUsed)
			}

			ctx := config.WithConfig(cmd.Context(), loaded.Config)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./rekap.yaml)")
	flags.StringP("file", "f", "", "Recap file, .csv or .xlsx (default \"RECAP PENAWARAN 2025.csv\")")
	flags.String("sheet", "", "Workbook sheet (default: first sheet)")
	flags.StringP("output", "o", "", "Output format (table|json|csv|markdown)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	flags.String("timezone", "", "Zone for dates in the file (default UTC)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewColumnsCommand())
	rootCmd.AddCommand(commands.NewSummaryCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewRecordsCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewServeCommand())

	return rootCmd
}

// Execute runs the root command and reports the error, with its code when
// it has one.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if code := tabular.ErrorCode(err); code != tabular.CodeUnknown {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}
