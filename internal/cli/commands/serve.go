package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/rekap/dataset"
	"github.com/spektr-org/rekap/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recap over a JSON HTTP API",
		Long: `Load the recap file and serve KPIs, aggregates, facets and charts over
HTTP. A new file can be uploaded with POST /api/dataset?name=FILE.`,
		Example: `  rekap serve -f "RECAP PENAWARAN 2025.csv"
  rekap serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			ds, err := cc.LoadDataset(cmd)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Store:       dataset.NewStore(ds),
				Settings:    cc.Cfg,
				Logger:      cc.Logger,
				LoadOptions: cc.LoadOptions(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx, cc.Cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	return cmd
}
