package domain

import (
	"math"
	"time"
)

// Criterion names, in evaluation order. The names and point values are
// part of the published ranking contract.
const (
	CriterionTokenless     = "tokenless"
	CriterionPointsProgram = "points_program"
	CriterionHighAirdropVC = "high_airdrop_vc"
	CriterionFunding       = "funding"
	CriterionTier1VC       = "tier1_vc"
	CriterionTier2VC       = "tier2_vc"
	CriterionRecency       = "recency"
	CriterionStage         = "stage"
	CriterionTVLGrowth     = "tvl_growth"
	CriterionHiddenGem     = "hidden_gem"
	CriterionCategory      = "category"
)

// Fixed point values of the criteria model.
const (
	pointsTokenless     = 12.0
	pointsPointsProgram = 15.0
	pointsHighAirdropVC = 13.0
	pointsFundingMax    = 15.0
	pointsTier1VC       = 12.0
	pointsTier2VC       = 8.0
	pointsRecencyMax    = 10.0
	pointsStage         = 10.0
	pointsGrowthMax     = 8.0
	pointsHiddenGem     = 10.0
	pointsCategory      = 5.0
)

// TagHiddenGem marks an early, low-TVL, well-backed, tokenless project.
const TagHiddenGem = "HiddenGem"

// Additional qualitative tags carried for downstream filtering.
const (
	TagTokenless = "Tokenless"
	TagPoints    = "Points"
)

// criterionTiers groups criteria under the declared per-tier maxima.
var criterionTiers = map[string]int{
	CriterionTokenless:     1,
	CriterionPointsProgram: 1,
	CriterionHighAirdropVC: 1,
	CriterionFunding:       2,
	CriterionTier1VC:       2,
	CriterionTier2VC:       2,
	CriterionRecency:       3,
	CriterionStage:         3,
	CriterionTVLGrowth:     3,
	CriterionHiddenGem:     4,
	CriterionCategory:      4,
}

// TierMaxima are the declared per-tier score ceilings reported alongside
// every breakdown so published totals are auditable.
var TierMaxima = map[int]float64{1: 40, 2: 35, 3: 25, 4: 30}

// CriterionScore is one awarded line of a breakdown.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Points    float64 `json:"points"`
	Tier      int     `json:"tier"`
}

// ScoreBreakdown is the full audit record of one scoring pass. Lines are
// in evaluation order. Total is the unclamped sum unless per-tier
// clamping was requested, in which case each tier subtotal is capped at
// its declared maximum before summing.
type ScoreBreakdown struct {
	Lines         []CriterionScore `json:"lines"`
	Total         float64          `json:"total"`
	TierSubtotals map[int]float64  `json:"tier_subtotals"`
	TierMaxima    map[int]float64  `json:"tier_maxima"`
	Clamped       bool             `json:"clamped"`
	Tags          []string         `json:"tags,omitempty"`
}

// Points returns the awarded points for a criterion, zero if absent.
func (b *ScoreBreakdown) Points(criterion string) float64 {
	for _, line := range b.Lines {
		if line.Criterion == criterion {
			return line.Points
		}
	}
	return 0
}

// HasTag reports whether a qualitative tag was awarded.
func (b *ScoreBreakdown) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ScoringParams are the tunable thresholds of the model. Point values
// are fixed; only thresholds and curves vary by configuration.
type ScoringParams struct {
	FundingMinUSD     float64
	FundingCeilingUSD float64
	HiddenGemTVLUSD   float64
	GrowthWindowDays  int
	ClampTiers        bool
	HotCategories     []string
}

// DefaultScoringParams returns the published defaults.
func DefaultScoringParams() ScoringParams {
	return ScoringParams{
		FundingMinUSD:     1_000_000,
		FundingCeilingUSD: 50_000_000,
		HiddenGemTVLUSD:   5_000_000,
		GrowthWindowDays:  7,
		ClampTiers:        false,
		HotCategories: []string{
			"dexs", "derivatives", "yield", "cdp", "perpetuals", "perps",
			"cross-chain", "privacy", "yield aggregator", "restaking", "bridge",
		},
	}
}

// Scorer applies the weighted criteria model. Scoring is a pure function
// of the record, the static VC table, and the fixed reference time: the
// same inputs always produce the same breakdown.
type Scorer struct {
	table      *VCTable
	params     ScoringParams
	now        time.Time
	categories map[string]bool
}

// NewScorer builds a scorer with a fixed reference time for the recency
// criterion.
func NewScorer(table *VCTable, params ScoringParams, now time.Time) *Scorer {
	categories := make(map[string]bool, len(params.HotCategories))
	for _, c := range params.HotCategories {
		categories[normalizeBackerName(c)] = true
	}
	return &Scorer{table: table, params: params, now: now.UTC(), categories: categories}
}

// Score evaluates every criterion against the record, in the documented
// order, and returns the full breakdown. No criterion ever fails the
// pass; a criterion that cannot be evaluated contributes zero.
func (s *Scorer) Score(rec ProtocolRecord) ScoreBreakdown {
	breakdown := ScoreBreakdown{
		TierSubtotals: make(map[int]float64),
		TierMaxima:    TierMaxima,
		Clamped:       s.params.ClampTiers,
	}

	hasTier1, hasTier2, hasHighAirdrop := s.classifyBackers(rec.Backers)

	if !rec.HasToken {
		breakdown.award(CriterionTokenless, pointsTokenless)
		breakdown.tag(TagTokenless)
	}
	if rec.HasPoints {
		breakdown.award(CriterionPointsProgram, pointsPointsProgram)
		breakdown.tag(TagPoints)
	}
	if hasHighAirdrop {
		breakdown.award(CriterionHighAirdropVC, pointsHighAirdropVC)
	}
	if pts := s.fundingPoints(rec.FundingUSD); pts > 0 {
		breakdown.award(CriterionFunding, pts)
	}
	// The two presence bonuses are mutually exclusive: a Tier-1 backer
	// already carries the stronger form of the same signal.
	if hasTier1 {
		breakdown.award(CriterionTier1VC, pointsTier1VC)
	} else if hasTier2 {
		breakdown.award(CriterionTier2VC, pointsTier2VC)
	}
	if pts := s.recencyPoints(rec.ListedAt); pts > 0 {
		breakdown.award(CriterionRecency, pts)
	}
	if rec.Stage == StageSeed || rec.Stage == StageSeriesA {
		breakdown.award(CriterionStage, pointsStage)
	}
	if pts := s.growthPoints(rec.TVLHistory); pts > 0 {
		breakdown.award(CriterionTVLGrowth, pts)
	}
	if !rec.HasToken && rec.CurrentTVL < s.params.HiddenGemTVLUSD && (hasTier1 || hasHighAirdrop) {
		breakdown.award(CriterionHiddenGem, pointsHiddenGem)
		breakdown.tag(TagHiddenGem)
	}
	if s.categories[normalizeBackerName(rec.Category)] {
		breakdown.award(CriterionCategory, pointsCategory)
	}

	breakdown.Total = breakdown.sum()
	return breakdown
}

func (s *Scorer) classifyBackers(backers []string) (tier1, tier2, highAirdrop bool) {
	for _, backer := range backers {
		switch s.table.Classify(backer) {
		case Tier1:
			tier1 = true
		case Tier2:
			tier2 = true
		case TierHighAirdropHistory:
			highAirdrop = true
		}
	}
	return tier1, tier2, highAirdrop
}

// fundingPoints is zero below the minimum threshold, saturates at the
// ceiling, and interpolates linearly between the two.
func (s *Scorer) fundingPoints(funding *float64) float64 {
	if funding == nil || *funding < s.params.FundingMinUSD {
		return 0
	}
	if *funding >= s.params.FundingCeilingUSD {
		return pointsFundingMax
	}
	span := s.params.FundingCeilingUSD - s.params.FundingMinUSD
	return pointsFundingMax * (*funding - s.params.FundingMinUSD) / span
}

// recencyPoints uses a stepped decay: full points inside 30 days,
// decaying through 90/180/365 day bands to zero. An unknown listing date
// scores zero.
func (s *Scorer) recencyPoints(listedAt time.Time) float64 {
	if listedAt.IsZero() || listedAt.After(s.now) {
		if listedAt.IsZero() {
			return 0
		}
		// A listing date in the future counts as just listed.
		return pointsRecencyMax
	}
	days := int(s.now.Sub(listedAt).Hours() / 24)
	switch {
	case days <= 30:
		return pointsRecencyMax
	case days <= 90:
		return 8
	case days <= 180:
		return 6
	case days <= 365:
		return 4
	default:
		return 0
	}
}

// growthPoints steps on the percentage TVL change across the trailing
// window of the history, anchored at the newest sample. Fewer than two
// usable samples is no data, not a zero-growth measurement, and scores
// zero; so does negative growth.
func (s *Scorer) growthPoints(history []TVLPoint) float64 {
	if len(history) < 2 {
		return 0
	}
	last := history[len(history)-1]
	windowStart := last.Timestamp - int64(s.params.GrowthWindowDays)*86_400

	baseline := TVLPoint{Timestamp: -1}
	for _, p := range history[:len(history)-1] {
		if p.Timestamp >= windowStart {
			baseline = p
			break
		}
	}
	if baseline.Timestamp < 0 || baseline.USD <= 0 {
		return 0
	}

	pct := (last.USD - baseline.USD) / baseline.USD * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	switch {
	case pct >= 50:
		return pointsGrowthMax
	case pct >= 20:
		return 6
	case pct >= 10:
		return 4
	case pct >= 5:
		return 2
	case pct >= 0:
		return 1
	default:
		return 0
	}
}

func (b *ScoreBreakdown) award(criterion string, points float64) {
	tier := criterionTiers[criterion]
	b.Lines = append(b.Lines, CriterionScore{Criterion: criterion, Points: points, Tier: tier})
	b.TierSubtotals[tier] += points
}

func (b *ScoreBreakdown) tag(tag string) {
	if !b.HasTag(tag) {
		b.Tags = append(b.Tags, tag)
	}
}

func (b *ScoreBreakdown) sum() float64 {
	if !b.Clamped {
		var total float64
		for _, line := range b.Lines {
			total += line.Points
		}
		return total
	}
	// Clamping is per tier, never global, to match the declared maxima.
	var total float64
	for tier, subtotal := range b.TierSubtotals {
		total += math.Min(subtotal, b.TierMaxima[tier])
	}
	return total
}
