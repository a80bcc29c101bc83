// Package ui renders ranked results for the console.
package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/sawpanic/airdroprun/internal/domain"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

// PrintTable writes a fixed-width ranking table: rank, name, total
// score, funding, TVL, and the awarded tags.
func PrintTable(w io.Writer, entries []domain.RankedEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Rank\tName\tScore\tFunding\tTVL\tTags")
	fmt.Fprintln(tw, "----\t----\t-----\t-------\t---\t----")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t%s\t%s\n",
			e.Rank,
			e.Record.Name,
			e.Breakdown.Total,
			FormatFunding(e.Record.FundingUSD),
			FormatUSD(e.Record.CurrentTVL),
			strings.Join(e.Breakdown.Tags, ","),
		)
	}
	tw.Flush()
}

// PrintBreakdown writes the per-criterion audit lines for one entry.
func PrintBreakdown(w io.Writer, e domain.RankedEntry) {
	fmt.Fprintf(w, "%d. %s (total %.1f)\n", e.Rank, e.Record.Name, e.Breakdown.Total)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, line := range e.Breakdown.Lines {
		fmt.Fprintf(tw, "  %s\t%.1f\ttier %d (max %.0f)\n",
			line.Criterion, line.Points, line.Tier, e.Breakdown.TierMaxima[line.Tier])
	}
	tw.Flush()
}

// Success prints a green status line.
func Success(format string, a ...any) {
	green.Printf("✓ "+format+"\n", a...)
}

// Warn prints a yellow status line.
func Warn(format string, a ...any) {
	yellow.Printf("! "+format+"\n", a...)
}

// FormatUSD renders a dollar amount with a compact magnitude suffix.
func FormatUSD(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// FormatFunding renders disclosed funding, or a dash when undisclosed.
func FormatFunding(v *float64) string {
	if v == nil {
		return "-"
	}
	return FormatUSD(*v)
}
