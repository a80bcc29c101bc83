// Package pipeline orchestrates one batch run: fetch, normalize, score,
// rank. A run either completes with a full ranking or fails before any
// partial output is produced.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/airdroprun/internal/cache"
	"github.com/sawpanic/airdroprun/internal/domain"
	"github.com/sawpanic/airdroprun/internal/llama"
)

// Fetcher is the slice of the DeFiLlama client the pipeline consumes.
type Fetcher interface {
	Protocols(ctx context.Context, useCache bool) ([]llama.Protocol, error)
	Raises(ctx context.Context, useCache bool) ([]llama.Raise, error)
}

// StatsSource exposes cache counters for the metrics gauges. Optional.
type StatsSource interface {
	Stats() cache.Stats
}

// Options selects what one run scores.
type Options struct {
	MinTVLUSD     float64
	TokenlessOnly bool
	UseCache      bool
}

// Result is the complete output of one run.
type Result struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Entries     []domain.RankedEntry `json:"entries"`
	Fetched     int                  `json:"fetched"`
	Scored      int                  `json:"scored"`
	Filtered    int                  `json:"filtered"`
}

// Runner wires the fetcher, the VC table, and the scoring parameters
// into a repeatable batch run.
type Runner struct {
	fetcher Fetcher
	table   *domain.VCTable
	params  domain.ScoringParams
	stats   StatsSource
	now     func() time.Time
}

// NewRunner builds a runner. stats may be nil when no cache counters are
// available.
func NewRunner(fetcher Fetcher, table *domain.VCTable, params domain.ScoringParams, stats StatsSource) *Runner {
	return &Runner{
		fetcher: fetcher,
		table:   table,
		params:  params,
		stats:   stats,
		now:     time.Now,
	}
}

// Run executes the full pipeline once. Fetch failure with no usable
// cache aborts before scoring; per-record problems are skipped inside
// normalization and never fail the batch.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	started := r.now()
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	protocols, err := r.fetcher.Protocols(ctx, opts.UseCache)
	if err != nil {
		runsTotal.WithLabelValues("fetch_failed").Inc()
		return nil, fmt.Errorf("fetch protocols: %w", err)
	}
	raises, err := r.fetcher.Raises(ctx, opts.UseCache)
	if err != nil {
		runsTotal.WithLabelValues("fetch_failed").Inc()
		return nil, fmt.Errorf("fetch raises: %w", err)
	}
	logger.Info().Int("protocols", len(protocols)).Int("raises", len(raises)).Msg("Raw payload fetched")

	normalizer := domain.NewNormalizer(raises)
	records := normalizer.NormalizeAll(protocols)

	scorer := domain.NewScorer(r.table, r.params, r.now())
	scored := make([]domain.Scored, 0, len(records))
	filtered := 0
	for _, rec := range records {
		if reason := r.filterReason(rec, opts); reason != "" {
			recordsFiltered.WithLabelValues(reason).Inc()
			filtered++
			continue
		}
		scored = append(scored, domain.Scored{Record: rec, Breakdown: scorer.Score(rec)})
	}
	recordsScored.Add(float64(len(scored)))

	entries := domain.Rank(scored)

	if r.stats != nil {
		stats := r.stats.Stats()
		cacheHits.Set(float64(stats.Hits))
		cacheMisses.Set(float64(stats.Misses))
	}
	runsTotal.WithLabelValues("ok").Inc()
	runDuration.Observe(r.now().Sub(started).Seconds())

	logger.Info().
		Int("scored", len(scored)).
		Int("filtered", filtered).
		Dur("elapsed", r.now().Sub(started)).
		Msg("Run completed")

	return &Result{
		RunID:       runID,
		GeneratedAt: started.UTC(),
		Entries:     entries,
		Fetched:     len(protocols),
		Scored:      len(scored),
		Filtered:    filtered,
	}, nil
}

// filterReason returns a non-empty reason when a record is excluded from
// scoring by the run options.
func (r *Runner) filterReason(rec domain.ProtocolRecord, opts Options) string {
	if rec.CurrentTVL < opts.MinTVLUSD {
		return "below_min_tvl"
	}
	if strings.Contains(strings.ToLower(rec.Category), "cex") {
		return "centralized_exchange"
	}
	if opts.TokenlessOnly && rec.HasToken {
		return "has_token"
	}
	return ""
}
