package domain

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier classifies a venture backer by historical airdrop relevance.
type Tier string

const (
	TierUnlisted           Tier = "unlisted"
	Tier1                  Tier = "tier1"
	Tier2                  Tier = "tier2"
	TierHighAirdropHistory Tier = "high_airdrop_history"
)

//go:embed vc_tiers.yaml
var vcTiersYAML []byte

// vcSuffixes are stripped from backer names before lookup so that
// "Paradigm Capital" and "Paradigm" classify identically.
var vcSuffixes = []string{"capital", "ventures", "labs", "lab", "partners", "fund"}

// VCTable maps backer names to tiers. It is built once from the embedded
// curated list and is read-only afterwards.
type VCTable struct {
	entries map[string]Tier
}

type vcTiersFile struct {
	HighAirdropHistory []string `yaml:"high_airdrop_history"`
	Tier1              []string `yaml:"tier1"`
	Tier2              []string `yaml:"tier2"`
}

// LoadVCTable parses the embedded classification data.
func LoadVCTable() (*VCTable, error) {
	var file vcTiersFile
	if err := yaml.Unmarshal(vcTiersYAML, &file); err != nil {
		return nil, fmt.Errorf("parse embedded vc tiers: %w", err)
	}

	table := &VCTable{entries: make(map[string]Tier)}
	// High-airdrop-history entries win over the broader tier lists.
	for _, name := range file.Tier2 {
		table.entries[normalizeBackerName(name)] = Tier2
	}
	for _, name := range file.Tier1 {
		table.entries[normalizeBackerName(name)] = Tier1
	}
	for _, name := range file.HighAirdropHistory {
		table.entries[normalizeBackerName(name)] = TierHighAirdropHistory
	}
	return table, nil
}

// MustLoadVCTable is LoadVCTable for process startup, where a broken
// embedded table is a build defect rather than a runtime condition.
func MustLoadVCTable() *VCTable {
	table, err := LoadVCTable()
	if err != nil {
		panic(err)
	}
	return table
}

// Classify returns the tier for a backer name. Lookup is
// case-insensitive and tolerant of common firm suffixes; unknown names
// are Unlisted.
func (t *VCTable) Classify(name string) Tier {
	key := normalizeBackerName(name)
	if key == "" {
		return TierUnlisted
	}
	if tier, ok := t.entries[key]; ok {
		return tier
	}
	// Retry with the trailing suffix stripped: "dragonfly capital" hits
	// the "dragonfly" entry.
	for _, suffix := range vcSuffixes {
		if trimmed, ok := strings.CutSuffix(key, " "+suffix); ok {
			if tier, ok := t.entries[trimmed]; ok {
				return tier
			}
		}
	}
	return TierUnlisted
}

// Len reports the number of curated entries.
func (t *VCTable) Len() int {
	return len(t.entries)
}

func normalizeBackerName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
