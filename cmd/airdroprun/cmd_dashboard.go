package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sawpanic/airdroprun/internal/domain"
	httpiface "github.com/sawpanic/airdroprun/internal/interfaces/http"
	"github.com/sawpanic/airdroprun/internal/pipeline"
	"github.com/sawpanic/airdroprun/internal/ui"
)

func newDashboardCmd() *cobra.Command {
	var (
		topN    int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Run the pipeline and serve the results as a local dashboard",
		Long: `Runs one full scoring pass, then serves the ranking on a local-only
HTTP server: an HTML dashboard at /, the same data as JSON at
/api/rankings, plus /health and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			topN = resolveTopN(topN, a.cfg.Scan.TopN)

			result, err := a.runner.Run(ctx, pipeline.Options{
				MinTVLUSD: a.cfg.Scan.MinTVLUSD,
				UseCache:  !noCache,
			})
			if err != nil {
				return err
			}
			result.Entries = domain.TopN(result.Entries, topN)

			server := httpiface.NewServer(httpiface.ServerConfig{
				Host:         a.cfg.Server.Host,
				Port:         a.cfg.Server.Port,
				ReadTimeout:  a.cfg.Server.ReadTimeout(),
				WriteTimeout: a.cfg.Server.WriteTimeout(),
			}, result)

			ui.Success("Dashboard ready at http://%s:%d (Ctrl-C to stop)", a.cfg.Server.Host, a.cfg.Server.Port)
			if err := server.Start(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("serve dashboard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "Number of entries to publish on the dashboard (0 = config default)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the response cache")
	return cmd
}
