package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdroprun_runs_total",
			Help: "Total scoring runs by outcome",
		},
		[]string{"outcome"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airdroprun_run_duration_seconds",
			Help:    "Duration of a full fetch-normalize-score-rank run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	recordsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airdroprun_records_scored_total",
			Help: "Protocol records that made it through scoring",
		},
	)

	recordsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdroprun_records_filtered_total",
			Help: "Protocol records dropped before scoring, by reason",
		},
		[]string{"reason"},
	)

	cacheHits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airdroprun_cache_hits",
			Help: "Cache hits observed by the response cache",
		},
	)

	cacheMisses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airdroprun_cache_misses",
			Help: "Cache misses observed by the response cache",
		},
	)
)
