package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredWith(name string, total float64, funding *float64) Scored {
	return Scored{
		Record:    ProtocolRecord{Name: name, FundingUSD: funding},
		Breakdown: ScoreBreakdown{Total: total},
	}
}

func TestRank_OrdersByTotalDescending(t *testing.T) {
	entries := Rank([]Scored{
		scoredWith("low", 10, nil),
		scoredWith("high", 50, nil),
		scoredWith("mid", 30, nil),
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "high", entries[0].Record.Name)
	assert.Equal(t, "mid", entries[1].Record.Name)
	assert.Equal(t, "low", entries[2].Record.Name)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank, "ranks are 1-based and dense")
	}
}

func TestRank_TieBreakFundingDescendingNilsLast(t *testing.T) {
	entries := Rank([]Scored{
		scoredWith("undisclosed", 40, nil),
		scoredWith("small-raise", 40, f64Ptr(2_000_000)),
		scoredWith("big-raise", 40, f64Ptr(90_000_000)),
	})

	assert.Equal(t, "big-raise", entries[0].Record.Name)
	assert.Equal(t, "small-raise", entries[1].Record.Name)
	assert.Equal(t, "undisclosed", entries[2].Record.Name)
}

func TestRank_FinalTieBreakIsNameAscending(t *testing.T) {
	entries := Rank([]Scored{
		scoredWith("zeta", 40, f64Ptr(5_000_000)),
		scoredWith("alpha", 40, f64Ptr(5_000_000)),
		scoredWith("mango", 40, nil),
		scoredWith("banana", 40, nil),
	})

	assert.Equal(t, "alpha", entries[0].Record.Name)
	assert.Equal(t, "zeta", entries[1].Record.Name)
	assert.Equal(t, "banana", entries[2].Record.Name)
	assert.Equal(t, "mango", entries[3].Record.Name)
}

func TestRank_IsDeterministic(t *testing.T) {
	input := []Scored{
		scoredWith("a", 10, nil),
		scoredWith("b", 10, nil),
		scoredWith("c", 20, f64Ptr(1)),
	}

	first := Rank(input)
	second := Rank(input)
	assert.Equal(t, first, second)
}

func TestTopN(t *testing.T) {
	entries := Rank([]Scored{
		scoredWith("a", 30, nil),
		scoredWith("b", 20, nil),
		scoredWith("c", 10, nil),
	})

	top := TopN(entries, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Record.Name)

	// k larger than the set returns the whole set, fully ranked.
	all := TopN(entries, 5)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[2].Rank)

	assert.Empty(t, TopN(entries, 0))
	assert.Empty(t, TopN(nil, 3))
}
