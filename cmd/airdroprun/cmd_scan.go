package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawpanic/airdroprun/internal/domain"
	"github.com/sawpanic/airdroprun/internal/pipeline"
	"github.com/sawpanic/airdroprun/internal/ui"
)

func newScanCmd() *cobra.Command {
	var (
		topN          int
		format        string
		minTVL        float64
		tokenlessOnly bool
		noCache       bool
		showBreakdown bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the full scoring pipeline and print the top candidates",
		Long: `Fetches protocol and funding data (cache-first), scores every protocol
against the airdrop criteria model, and prints the ranked result.

Example usage:
  airdroprun scan                      # Top 20, fixed-width table
  airdroprun scan --top 50             # Top 50
  airdroprun scan --format json        # Structured output with breakdowns
  airdroprun scan --tokenless-only     # Only protocols without a token
  airdroprun scan --no-cache           # Force a live fetch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			topN = resolveTopN(topN, a.cfg.Scan.TopN)
			if minTVL < 0 {
				minTVL = a.cfg.Scan.MinTVLUSD
			}

			result, err := a.runner.Run(ctx, pipeline.Options{
				MinTVLUSD:     minTVL,
				TokenlessOnly: tokenlessOnly,
				UseCache:      !noCache,
			})
			if err != nil {
				return err
			}

			top := domain.TopN(result.Entries, topN)
			switch format {
			case "json":
				trimmed := *result
				trimmed.Entries = top
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(&trimmed)
			case "table":
				ui.PrintTable(os.Stdout, top)
				if showBreakdown {
					fmt.Println()
					for _, e := range top {
						ui.PrintBreakdown(os.Stdout, e)
					}
				}
				ui.Success("%d of %d scored protocols shown (run %s)", len(top), result.Scored, result.RunID)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want table or json)", format)
			}
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "Number of top candidates to show (0 = config default)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json")
	cmd.Flags().Float64Var(&minTVL, "min-tvl", -1, "Minimum TVL in USD (-1 = config default)")
	cmd.Flags().BoolVar(&tokenlessOnly, "tokenless-only", false, "Only rank protocols without a live token")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&showBreakdown, "breakdown", false, "Print per-criterion breakdowns")
	return cmd
}
