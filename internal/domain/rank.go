package domain

import "sort"

// Scored pairs a record with its breakdown before ranking.
type Scored struct {
	Record    ProtocolRecord `json:"record"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// RankedEntry is one row of the final ranking.
type RankedEntry struct {
	Record    ProtocolRecord `json:"record"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Rank      int            `json:"rank"`
}

// Rank orders scored records by total descending, breaking ties by
// disclosed funding descending (undisclosed last) and then name
// ascending, and assigns 1-based ranks. The order is a deterministic
// total order: equal inputs always rank identically.
func Rank(scored []Scored) []RankedEntry {
	entries := make([]RankedEntry, len(scored))
	for i, s := range scored {
		entries[i] = RankedEntry{Record: s.Record, Breakdown: s.Breakdown}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Breakdown.Total != entries[j].Breakdown.Total {
			return entries[i].Breakdown.Total > entries[j].Breakdown.Total
		}
		fi, fj := entries[i].Record.FundingUSD, entries[j].Record.FundingUSD
		switch {
		case fi != nil && fj != nil && *fi != *fj:
			return *fi > *fj
		case fi != nil && fj == nil:
			return true
		case fi == nil && fj != nil:
			return false
		}
		return entries[i].Record.Name < entries[j].Record.Name
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// TopN returns the first k entries of a ranking. A k larger than the set
// returns the whole set; a non-positive k returns nothing.
func TopN(entries []RankedEntry, k int) []RankedEntry {
	if k <= 0 {
		return nil
	}
	if k > len(entries) {
		k = len(entries)
	}
	return entries[:k]
}
