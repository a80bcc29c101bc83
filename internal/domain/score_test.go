package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestScorer(t *testing.T, mutate ...func(*ScoringParams)) *Scorer {
	t.Helper()
	table, err := LoadVCTable()
	require.NoError(t, err, "embedded vc table must parse")
	params := DefaultScoringParams()
	for _, m := range mutate {
		m(&params)
	}
	return NewScorer(table, params, scoreNow)
}

func TestScore_Tokenless(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{Name: "NoToken"})
	assert.Equal(t, 12.0, b.Points(CriterionTokenless))
	assert.True(t, b.HasTag(TagTokenless))

	b = s.Score(ProtocolRecord{Name: "HasToken", HasToken: true})
	assert.Equal(t, 0.0, b.Points(CriterionTokenless))
	assert.False(t, b.HasTag(TagTokenless))
}

func TestScore_PointsProgram(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{Name: "Pointy", HasToken: true, HasPoints: true})
	assert.Equal(t, 15.0, b.Points(CriterionPointsProgram))
	assert.True(t, b.HasTag(TagPoints))
}

func TestScore_FundingCurve(t *testing.T) {
	s := newTestScorer(t)

	cases := []struct {
		name    string
		funding *float64
		want    float64
	}{
		{"nil funding", nil, 0},
		{"below minimum", f64Ptr(500_000), 0},
		{"at minimum", f64Ptr(1_000_000), 0},
		{"midpoint interpolates", f64Ptr(25_500_000), 7.5},
		{"at ceiling", f64Ptr(50_000_000), 15},
		{"above ceiling saturates", f64Ptr(400_000_000), 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := s.Score(ProtocolRecord{Name: "F", HasToken: true, FundingUSD: tc.funding})
			assert.InDelta(t, tc.want, b.Points(CriterionFunding), 1e-9)
		})
	}
}

func TestScore_VCTierBonusesAreMutuallyExclusive(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{Name: "T1", HasToken: true, Backers: []string{"a16z"}})
	assert.Equal(t, 12.0, b.Points(CriterionTier1VC))
	assert.Equal(t, 0.0, b.Points(CriterionTier2VC))

	b = s.Score(ProtocolRecord{Name: "T2", HasToken: true, Backers: []string{"robot ventures"}})
	assert.Equal(t, 0.0, b.Points(CriterionTier1VC))
	assert.Equal(t, 8.0, b.Points(CriterionTier2VC))

	// Holding both tiers pays only the Tier-1 bonus.
	b = s.Score(ProtocolRecord{Name: "Both", HasToken: true, Backers: []string{"a16z", "robot ventures"}})
	assert.Equal(t, 12.0, b.Points(CriterionTier1VC))
	assert.Equal(t, 0.0, b.Points(CriterionTier2VC))
}

func TestScore_HighAirdropHistoryVCStacksWithTier1(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{Name: "Stacked", HasToken: true, Backers: []string{"paradigm", "a16z"}})
	assert.Equal(t, 13.0, b.Points(CriterionHighAirdropVC))
	assert.Equal(t, 12.0, b.Points(CriterionTier1VC))
}

func TestScore_NoBackersNoVCPoints(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{Name: "Lonely"})
	assert.Equal(t, 0.0, b.Points(CriterionTier1VC))
	assert.Equal(t, 0.0, b.Points(CriterionTier2VC))
	assert.Equal(t, 0.0, b.Points(CriterionHighAirdropVC))
	assert.Equal(t, 0.0, b.Points(CriterionHiddenGem))
	assert.False(t, b.HasTag(TagHiddenGem))
}

func TestScore_RecencyDecay(t *testing.T) {
	s := newTestScorer(t)

	cases := []struct {
		daysAgo int
		want    float64
	}{
		{10, 10}, {30, 10}, {45, 8}, {90, 8}, {120, 6}, {300, 4}, {400, 0},
	}
	for _, tc := range cases {
		b := s.Score(ProtocolRecord{
			Name: "R", HasToken: true,
			ListedAt: scoreNow.AddDate(0, 0, -tc.daysAgo),
		})
		assert.Equal(t, tc.want, b.Points(CriterionRecency), "days ago: %d", tc.daysAgo)
	}

	// Unknown listing date scores zero.
	b := s.Score(ProtocolRecord{Name: "Undated", HasToken: true})
	assert.Equal(t, 0.0, b.Points(CriterionRecency))
}

func TestScore_Stage(t *testing.T) {
	s := newTestScorer(t)

	for _, stage := range []Stage{StageSeed, StageSeriesA} {
		b := s.Score(ProtocolRecord{Name: "Early", HasToken: true, Stage: stage})
		assert.Equal(t, 10.0, b.Points(CriterionStage), "stage %s", stage)
	}
	for _, stage := range []Stage{StageSeriesBPlus, StageUnknown} {
		b := s.Score(ProtocolRecord{Name: "Late", HasToken: true, Stage: stage})
		assert.Equal(t, 0.0, b.Points(CriterionStage), "stage %s", stage)
	}
}

func TestScore_TVLGrowthSteps(t *testing.T) {
	s := newTestScorer(t)

	history := func(base, last float64) []TVLPoint {
		return []TVLPoint{
			{Timestamp: 1_700_000_000, USD: base},
			{Timestamp: 1_700_000_000 + 3*86_400, USD: last},
		}
	}

	cases := []struct {
		name string
		hist []TVLPoint
		want float64
	}{
		{"+60%", history(100, 160), 8},
		{"+25%", history(100, 125), 6},
		{"+12%", history(100, 112), 4},
		{"+6%", history(100, 106), 2},
		{"flat", history(100, 100), 1},
		{"negative contributes zero, not negative", history(100, 40), 0},
		{"zero baseline", history(0, 50), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := s.Score(ProtocolRecord{Name: "G", HasToken: true, TVLHistory: tc.hist})
			assert.Equal(t, tc.want, b.Points(CriterionTVLGrowth))
		})
	}
}

func TestScore_EmptyHistoryIsNoDataNotZeroGrowth(t *testing.T) {
	s := newTestScorer(t)

	// No data: the growth criterion is skipped entirely.
	noData := s.Score(ProtocolRecord{Name: "NoData", HasToken: true})
	assert.Equal(t, 0.0, noData.Points(CriterionTVLGrowth))
	assert.Equal(t, -1, indexOfCriterion(noData, CriterionTVLGrowth), "no-data growth must not appear as a line")

	// Measured flat growth: the criterion fires with the floor step.
	flat := s.Score(ProtocolRecord{Name: "Flat", HasToken: true, TVLHistory: []TVLPoint{
		{Timestamp: 1_700_000_000, USD: 100},
		{Timestamp: 1_700_000_000 + 86_400, USD: 100},
	}})
	assert.Equal(t, 1.0, flat.Points(CriterionTVLGrowth))
	assert.GreaterOrEqual(t, indexOfCriterion(flat, CriterionTVLGrowth), 0)
}

func TestScore_BaselineOutsideWindowScoresZero(t *testing.T) {
	s := newTestScorer(t)

	// Only sample besides the anchor is older than the trailing window.
	b := s.Score(ProtocolRecord{Name: "Sparse", HasToken: true, TVLHistory: []TVLPoint{
		{Timestamp: 1_700_000_000, USD: 100},
		{Timestamp: 1_700_000_000 + 30*86_400, USD: 300},
	}})
	assert.Equal(t, 0.0, b.Points(CriterionTVLGrowth))
}

func TestScore_HiddenGem(t *testing.T) {
	s := newTestScorer(t)

	gem := ProtocolRecord{
		Name:       "Gem",
		CurrentTVL: 2_000_000,
		Backers:    []string{"paradigm"},
	}
	b := s.Score(gem)
	assert.Equal(t, 10.0, b.Points(CriterionHiddenGem))
	assert.True(t, b.HasTag(TagHiddenGem))

	// A live token disqualifies regardless of everything else.
	withToken := gem
	withToken.HasToken = true
	b = s.Score(withToken)
	assert.Equal(t, 0.0, b.Points(CriterionHiddenGem))
	assert.False(t, b.HasTag(TagHiddenGem))

	// Too much TVL disqualifies.
	big := gem
	big.CurrentTVL = 80_000_000
	b = s.Score(big)
	assert.False(t, b.HasTag(TagHiddenGem))

	// Tier-2-only backing does not qualify.
	weakBackers := gem
	weakBackers.Backers = []string{"robot ventures"}
	b = s.Score(weakBackers)
	assert.False(t, b.HasTag(TagHiddenGem))

	// A Tier-1 backer qualifies just like a high-airdrop-history one.
	tier1Gem := gem
	tier1Gem.Backers = []string{"a16z"}
	b = s.Score(tier1Gem)
	assert.True(t, b.HasTag(TagHiddenGem))
}

func TestScore_CategoryBonus(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{Name: "Perp", HasToken: true, Category: "Perpetuals"})
	assert.Equal(t, 5.0, b.Points(CriterionCategory))

	b = s.Score(ProtocolRecord{Name: "NFT", HasToken: true, Category: "NFT Marketplace"})
	assert.Equal(t, 0.0, b.Points(CriterionCategory))
}

func TestScore_IsPure(t *testing.T) {
	s := newTestScorer(t)

	rec := ProtocolRecord{
		Name:       "Deterministic",
		FundingUSD: f64Ptr(12_000_000),
		Backers:    []string{"a16z", "paradigm"},
		ListedAt:   scoreNow.AddDate(0, 0, -10),
		Stage:      StageSeriesA,
		Category:   "dexs",
		CurrentTVL: 1_000_000,
		TVLHistory: []TVLPoint{
			{Timestamp: 1_700_000_000, USD: 100},
			{Timestamp: 1_700_000_000 + 86_400, USD: 160},
		},
	}

	first := s.Score(rec)
	second := s.Score(rec)
	assert.Equal(t, first, second, "identical input must yield identical breakdown")
}

func TestScore_LinesFollowEvaluationOrder(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{
		Name:       "Ordered",
		HasPoints:  true,
		FundingUSD: f64Ptr(50_000_000),
		Backers:    []string{"a16z", "paradigm"},
		ListedAt:   scoreNow.AddDate(0, 0, -5),
		Stage:      StageSeed,
		Category:   "yield",
		CurrentTVL: 1_000,
	})

	var got []string
	for _, line := range b.Lines {
		got = append(got, line.Criterion)
	}
	assert.Equal(t, []string{
		CriterionTokenless,
		CriterionPointsProgram,
		CriterionHighAirdropVC,
		CriterionFunding,
		CriterionTier1VC,
		CriterionRecency,
		CriterionStage,
		CriterionHiddenGem,
		CriterionCategory,
	}, got)
}

func TestScore_ScenarioTokenlessSeriesA(t *testing.T) {
	// Tokenless, $12M funding, one Tier-1 backer, listed 10 days ago,
	// stage Series A: must land comfortably above 40.
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{
		Name:       "Scenario",
		FundingUSD: f64Ptr(12_000_000),
		Backers:    []string{"a16z"},
		ListedAt:   scoreNow.AddDate(0, 0, -10),
		Stage:      StageSeriesA,
		CurrentTVL: 50_000_000,
	})

	assert.Equal(t, 12.0, b.Points(CriterionTokenless))
	assert.Equal(t, 12.0, b.Points(CriterionTier1VC))
	assert.Equal(t, 10.0, b.Points(CriterionStage))
	assert.Equal(t, 10.0, b.Points(CriterionRecency))
	assert.Greater(t, b.Total, 44.0)
}

func TestScore_ScenarioLiveTokenNoFunding(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{Name: "Mature", HasToken: true})

	assert.Equal(t, 0.0, b.Points(CriterionTokenless))
	assert.Equal(t, 0.0, b.Points(CriterionFunding))
	assert.Equal(t, 0.0, b.Points(CriterionHiddenGem))
	assert.Equal(t, 0.0, b.Total)
}

func TestScore_TierSubtotalsWithinDeclaredMaxima(t *testing.T) {
	s := newTestScorer(t, func(p *ScoringParams) { p.ClampTiers = true })

	// Maximal record on every criterion.
	b := s.Score(ProtocolRecord{
		Name:       "Maxed",
		HasPoints:  true,
		FundingUSD: f64Ptr(100_000_000),
		Backers:    []string{"a16z", "paradigm"},
		ListedAt:   scoreNow.AddDate(0, 0, -1),
		Stage:      StageSeed,
		Category:   "perps",
		CurrentTVL: 100,
		TVLHistory: []TVLPoint{
			{Timestamp: 1_700_000_000, USD: 100},
			{Timestamp: 1_700_000_000 + 86_400, USD: 200},
		},
	})

	var clampedTotal float64
	for tier, max := range b.TierMaxima {
		subtotal := b.TierSubtotals[tier]
		assert.GreaterOrEqual(t, subtotal, 0.0)
		capped := subtotal
		if capped > max {
			capped = max
		}
		clampedTotal += capped
	}
	assert.Equal(t, clampedTotal, b.Total, "clamping must be per tier, not global")

	// Tier 3 overflows its declared maximum unclamped (10+10+8 > 25),
	// so the clamp must bite exactly there.
	assert.Equal(t, 28.0, b.TierSubtotals[3])
	assert.True(t, b.Clamped)
}

func TestScore_UnclampedTotalIsPlainSum(t *testing.T) {
	s := newTestScorer(t)

	b := s.Score(ProtocolRecord{
		Name:     "Sum",
		ListedAt: scoreNow.AddDate(0, 0, -1),
		Stage:    StageSeed,
		TVLHistory: []TVLPoint{
			{Timestamp: 1_700_000_000, USD: 100},
			{Timestamp: 1_700_000_000 + 86_400, USD: 200},
		},
	})

	var sum float64
	for _, line := range b.Lines {
		sum += line.Points
	}
	assert.Equal(t, sum, b.Total)
	assert.False(t, b.Clamped)
}

func indexOfCriterion(b ScoreBreakdown, criterion string) int {
	for i, line := range b.Lines {
		if line.Criterion == criterion {
			return i
		}
	}
	return -1
}
