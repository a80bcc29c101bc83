package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/airdroprun/internal/llama"
)

// ErrMalformedRecord marks a raw entry with no stable identity. Such
// entries are skipped with a warning, never fatal to the batch.
var ErrMalformedRecord = errors.New("raw protocol entry has neither name nor slug")

var (
	nameSuffixRe = regexp.MustCompile(`\s+(v\d+|protocol|finance|labs?)$`)
	nameCleanRe  = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Normalizer converts raw provider payloads into ProtocolRecords. It
// pre-indexes the funding rounds so per-protocol matching is a lookup.
type Normalizer struct {
	raises      []llama.Raise
	raiseLookup map[string][]llama.Raise
}

// NewNormalizer indexes the raise list by normalized name, slug, and
// provider ID.
func NewNormalizer(raises []llama.Raise) *Normalizer {
	lookup := make(map[string][]llama.Raise)
	for _, r := range raises {
		if name := strings.TrimSpace(strings.ToLower(r.Name)); name != "" {
			lookup[name] = append(lookup[name], r)
			if norm := normalizeProtocolName(r.Name); norm != "" && norm != name {
				lookup[norm] = append(lookup[norm], r)
			}
		}
		if r.DefillamaID != "" {
			key := "id:" + r.DefillamaID
			lookup[key] = append(lookup[key], r)
		}
	}
	return &Normalizer{raises: raises, raiseLookup: lookup}
}

// NormalizeAll converts every raw protocol, dropping malformed entries
// with a warning and keeping the rest of the batch alive.
func (n *Normalizer) NormalizeAll(protocols []llama.Protocol) []ProtocolRecord {
	records := make([]ProtocolRecord, 0, len(protocols))
	skipped := 0
	for i := range protocols {
		record, err := n.Normalize(protocols[i])
		if err != nil {
			skipped++
			log.Warn().Err(err).Int("index", i).Msg("Skipping malformed protocol entry")
			continue
		}
		records = append(records, record)
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("kept", len(records)).
			Msg("Some raw entries were dropped during normalization")
	}
	return records
}

// Normalize converts one raw protocol into an immutable ProtocolRecord.
func (n *Normalizer) Normalize(p llama.Protocol) (ProtocolRecord, error) {
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Slug) == "" {
		return ProtocolRecord{}, fmt.Errorf("%w (id=%q)", ErrMalformedRecord, p.ID)
	}

	raises := n.findRaises(p)
	record := ProtocolRecord{
		Name:       p.Name,
		Slug:       p.Slug,
		HasToken:   hasToken(p),
		HasPoints:  hasPoints(p),
		FundingUSD: totalFundingUSD(raises),
		Backers:    distinctBackers(raises),
		TVLHistory: normalizeTVLHistory(p.TVLHistory),
		Change7d:   p.Change7d,
		Stage:      inferStage(raises),
		Category:   p.Category,
		Chains:     p.Chains,
		URL:        p.URL,
		Twitter:    p.Twitter,
	}
	if p.ListedAt > 0 {
		record.ListedAt = time.Unix(p.ListedAt, 0).UTC()
	}
	record.CurrentTVL = p.TVL
	if record.CurrentTVL == 0 && len(record.TVLHistory) > 0 {
		record.CurrentTVL = record.TVLHistory[len(record.TVLHistory)-1].USD
	}
	return record, nil
}

func (n *Normalizer) findRaises(p llama.Protocol) []llama.Raise {
	var matches []llama.Raise
	if name := normalizeProtocolName(p.Name); name != "" {
		matches = append(matches, n.raiseLookup[name]...)
	}
	if slug := strings.ToLower(strings.TrimSpace(p.Slug)); slug != "" {
		matches = append(matches, n.raiseLookup[slug]...)
	}
	if p.ID != "" {
		matches = append(matches, n.raiseLookup["id:"+p.ID]...)
	}
	if parent := strings.TrimPrefix(p.ParentProtocol, "parent#"); parent != "" {
		parent = strings.ToLower(parent)
		for _, r := range n.raises {
			if r.DefillamaID != "" && strings.Contains(strings.ToLower(r.DefillamaID), parent) {
				matches = append(matches, r)
			}
		}
	}

	// Dedupe rounds matched through more than one index.
	type roundKey struct {
		name   string
		date   int64
		amount float64
	}
	seen := make(map[roundKey]bool)
	unique := matches[:0]
	for _, r := range matches {
		key := roundKey{name: r.Name, date: r.Date}
		if r.AmountMillions != nil {
			key.amount = *r.AmountMillions
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}

func hasToken(p llama.Protocol) bool {
	symbol := strings.TrimSpace(p.Symbol)
	tokenless := (symbol == "" || symbol == "-") && p.GeckoID == nil && p.CmcID == nil
	return !tokenless
}

func hasPoints(p llama.Protocol) bool {
	if p.HasPoints {
		return true
	}
	for _, tag := range p.Tags {
		if strings.EqualFold(tag, "points") {
			return true
		}
	}
	return false
}

// totalFundingUSD sums disclosed round amounts. The provider reports
// amounts in millions of dollars. Nil means no disclosed data at all,
// which the scorer treats as zero points, never an error.
func totalFundingUSD(raises []llama.Raise) *float64 {
	var total float64
	disclosed := false
	for _, r := range raises {
		if r.AmountMillions == nil {
			continue
		}
		disclosed = true
		total += *r.AmountMillions * 1_000_000
	}
	if !disclosed {
		return nil
	}
	return &total
}

func distinctBackers(raises []llama.Raise) []string {
	seen := make(map[string]bool)
	var backers []string
	for _, r := range raises {
		for _, investor := range append(append([]string{}, r.LeadInvestors...), r.OtherInvestors...) {
			name := normalizeBackerName(investor)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			backers = append(backers, name)
		}
	}
	sort.Strings(backers)
	return backers
}

// normalizeTVLHistory sorts ascending by timestamp; a duplicate
// timestamp keeps the latest-seen value.
func normalizeTVLHistory(points []llama.TVLChartPoint) []TVLPoint {
	if len(points) == 0 {
		return nil
	}
	byTS := make(map[int64]float64, len(points))
	order := make([]int64, 0, len(points))
	for _, p := range points {
		if _, ok := byTS[p.Timestamp]; !ok {
			order = append(order, p.Timestamp)
		}
		byTS[p.Timestamp] = p.USD
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	history := make([]TVLPoint, 0, len(order))
	for _, ts := range order {
		history = append(history, TVLPoint{Timestamp: ts, USD: byTS[ts]})
	}
	return history
}

// inferStage maps the label of the most recent disclosed round.
func inferStage(raises []llama.Raise) Stage {
	var latest *llama.Raise
	for i := range raises {
		if latest == nil || raises[i].Date > latest.Date {
			latest = &raises[i]
		}
	}
	if latest == nil {
		return StageUnknown
	}

	round := strings.ToLower(strings.TrimSpace(latest.Round))
	switch {
	case strings.Contains(round, "pre-seed"), strings.Contains(round, "preseed"), strings.Contains(round, "seed"):
		return StageSeed
	case strings.Contains(round, "series a"):
		return StageSeriesA
	case strings.Contains(round, "series b"), strings.Contains(round, "series c"),
		strings.Contains(round, "series d"), strings.Contains(round, "series e"):
		return StageSeriesBPlus
	default:
		return StageUnknown
	}
}

func normalizeProtocolName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = nameSuffixRe.ReplaceAllString(name, "")
	name = nameCleanRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
