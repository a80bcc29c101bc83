// Package domain holds the scoring core: protocol records, the VC
// classification table, the criteria model, and the ranker.
package domain

import "time"

// Stage is the funding-round classification of the most recent
// disclosed round.
type Stage string

const (
	StageSeed        Stage = "seed"
	StageSeriesA     Stage = "series_a"
	StageSeriesBPlus Stage = "series_b_plus"
	StageUnknown     Stage = "unknown"
)

// TVLPoint is one sample of a protocol's TVL series.
type TVLPoint struct {
	Timestamp int64   `json:"timestamp"`
	USD       float64 `json:"usd"`
}

// ProtocolRecord is the normalized, immutable view of one protocol that
// the scoring engine consumes. It is built fresh each run and never
// mutated afterwards.
type ProtocolRecord struct {
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	HasToken  bool     `json:"has_token"`
	HasPoints bool     `json:"has_points"`

	// FundingUSD is the sum of all disclosed rounds; nil means no
	// disclosed funding data, which scores zero, never errors.
	FundingUSD *float64 `json:"funding_usd"`

	// Backers holds distinct, case-folded investor names across all
	// disclosed rounds.
	Backers []string `json:"backers"`

	// TVLHistory is ascending by timestamp; duplicate timestamps keep
	// the latest-seen value.
	TVLHistory []TVLPoint `json:"tvl_history"`
	CurrentTVL float64    `json:"current_tvl"`
	Change7d   *float64   `json:"change_7d,omitempty"`

	// ListedAt is zero when the provider did not report a listing date.
	ListedAt time.Time `json:"listed_at"`
	Stage    Stage     `json:"stage"`
	Category string    `json:"category"`

	// Display-only fields carried through for the dashboard.
	Chains  []string `json:"chains,omitempty"`
	URL     string   `json:"url,omitempty"`
	Twitter string   `json:"twitter,omitempty"`
}
