package http

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/airdroprun/internal/domain"
	"github.com/sawpanic/airdroprun/internal/ui"
)

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"usd":            ui.FormatUSD,
	"funding":        ui.FormatFunding,
	"scoreClass":     scoreClass,
	"breakdownTitle": breakdownTitle,
}).Parse(`<!DOCTYPE html>
<html lang="en" data-theme="dark">
<head>
<meta charset="utf-8">
<title>Airdrop Discovery Dashboard</title>
<style>
  body { font-family: -apple-system, 'Segoe UI', sans-serif; background: #0d1117; color: #e6edf3; margin: 0; padding: 2rem; }
  h1 { font-size: 1.4rem; }
  .meta { color: #8b949e; font-size: 0.85rem; margin-bottom: 1.5rem; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: 0.5rem 0.75rem; border-bottom: 1px solid #21262d; }
  th { color: #8b949e; font-weight: 600; font-size: 0.8rem; text-transform: uppercase; }
  tr:hover { background: #161b22; }
  .score { font-weight: 700; }
  .score.high { color: #3fb950; }
  .score.mid { color: #d29922; }
  .score.low { color: #8b949e; }
  .badge { display: inline-block; padding: 0.1rem 0.45rem; border-radius: 1rem; font-size: 0.7rem; margin-right: 0.25rem; }
  .badge.tokenless { background: #1f6feb33; color: #58a6ff; }
  .badge.points { background: #a371f733; color: #a371f7; }
  .badge.gem { background: #23863633; color: #3fb950; }
  .cat { color: #8b949e; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>🪂 Airdrop Discovery Dashboard</h1>
<div class="meta">run {{.RunID}} · generated {{.GeneratedAt.Format "2006-01-02 15:04 UTC"}} · {{.Scored}} protocols scored</div>
<table>
<thead><tr><th>#</th><th>Protocol</th><th>Score</th><th>TVL</th><th>Funding</th><th>Stage</th><th>Category</th><th>Signals</th></tr></thead>
<tbody>
{{range .Entries}}<tr>
  <td>{{.Rank}}</td>
  <td>{{.Record.Name}}</td>
  <td><span class="score {{scoreClass .Breakdown.Total}}" title="{{breakdownTitle .Breakdown}}">{{printf "%.1f" .Breakdown.Total}}</span></td>
  <td>{{usd .Record.CurrentTVL}}</td>
  <td>{{funding .Record.FundingUSD}}</td>
  <td>{{.Record.Stage}}</td>
  <td class="cat">{{.Record.Category}}</td>
  <td>
    {{range .Breakdown.Tags}}{{if eq . "Tokenless"}}<span class="badge tokenless">No Token</span>{{end}}{{if eq . "Points"}}<span class="badge points">Points</span>{{end}}{{if eq . "HiddenGem"}}<span class="badge gem">Hidden Gem</span>{{end}}{{end}}
  </td>
</tr>{{end}}
</tbody>
</table>
</body>
</html>`))

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, s.result); err != nil {
		log.Error().Err(err).Msg("Failed to render dashboard")
	}
}

// scoreClass buckets a total into the dashboard's color classes.
func scoreClass(total float64) string {
	switch {
	case total >= 50:
		return "high"
	case total >= 30:
		return "mid"
	default:
		return "low"
	}
}

// breakdownTitle renders the per-criterion audit lines for the score
// tooltip.
func breakdownTitle(b domain.ScoreBreakdown) string {
	var out string
	for _, line := range b.Lines {
		if out != "" {
			out += "\n"
		}
		out += fmt.Sprintf("%s: %.1f", line.Criterion, line.Points)
	}
	return out
}
