package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/airdroprun/internal/cache"
	"github.com/sawpanic/airdroprun/internal/config"
	"github.com/sawpanic/airdroprun/internal/domain"
	"github.com/sawpanic/airdroprun/internal/llama"
	"github.com/sawpanic/airdroprun/internal/pipeline"
)

const (
	appName = "airdroprun"
	version = "v1.0.0"
)

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "DeFiLlama data-driven airdrop discovery tool",
		Version: version,
		Long: `AirdropRun ranks DeFi protocols by estimated airdrop potential using
public TVL and funding data from DeFiLlama. Scoring is deterministic and
fully auditable: every ranking comes with a per-criterion breakdown.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newTestAPICmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newDashboardCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveTopN maps the --top flag's zero sentinel to the configured
// default. Both scan and dashboard share this convention.
func resolveTopN(flag, configured int) int {
	if flag == 0 {
		return configured
	}
	return flag
}

// app bundles the wired components every subcommand needs.
type app struct {
	cfg    *config.Config
	store  *cache.Store
	client *llama.Client
	runner *pipeline.Runner
}

func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}

	client := llama.NewClient(llama.Options{
		BaseURL:       cfg.Llama.BaseURL,
		Timeout:       cfg.Llama.Timeout(),
		RatePerMinute: cfg.Llama.RatePerMinute,
		MaxRetries:    cfg.Llama.MaxRetries,
		CacheTTL:      cfg.Cache.TTL(),
	}, store)

	params := domain.ScoringParams{
		FundingMinUSD:     cfg.Scoring.FundingMinUSD,
		FundingCeilingUSD: cfg.Scoring.FundingCeilingUSD,
		HiddenGemTVLUSD:   cfg.Scoring.HiddenGemTVLUSD,
		GrowthWindowDays:  cfg.Scoring.GrowthWindowDays,
		ClampTiers:        cfg.Scoring.ClampTiers,
		HotCategories:     cfg.Scoring.HotCategories,
	}

	return &app{
		cfg:    cfg,
		store:  store,
		client: client,
		runner: pipeline.NewRunner(client, domain.MustLoadVCTable(), params, store),
	}, nil
}
