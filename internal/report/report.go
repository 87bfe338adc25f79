package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/contracts"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Writer renders an analysis result to a standalone HTML file.
type Writer struct {
	outputDir string
	tmpl      *template.Template
	logger    *logger.Logger
}

func NewWriter(outputDir string, log *logger.Logger) *Writer {
	return &Writer{
		outputDir: outputDir,
		tmpl:      template.Must(template.New("report").Parse(reportTemplate)),
		logger:    log.WithField("module", "report"),
	}
}

// row is one ticker's line in the rendered table. Momentum cells are
// strings so missing horizons render as "-" instead of a zero.
type row struct {
	Rank       int
	Ticker     string
	ScoreTotal string
	EPSGrowth  string
	RevGrowth  string
	PER        string
	PBR        string
	ROE        string
	Momentum   map[contracts.Horizon]string
}

type page struct {
	GeneratedAt string
	AsOf        string
	Universe    int
	Failed      int
	Horizons    []contracts.Horizon
	Rows        []row
}

// Write renders the result and writes report.html under the output
// directory, creating it if needed. Returns the written path.
func (w *Writer) Write(result *analysis.Result) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(w.outputDir, "report.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := w.tmpl.Execute(f, buildPage(result)); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(result.Scores),
	}).Info("Report written")

	return path, nil
}

func buildPage(result *analysis.Result) page {
	momentumByTicker := make(map[string]contracts.MomentumRecord, len(result.Momentum))
	for _, m := range result.Momentum {
		momentumByTicker[m.Ticker] = m
	}

	rows := make([]row, 0, len(result.Scores))
	for i, s := range result.Scores {
		r := row{
			Rank:       i + 1,
			Ticker:     s.Ticker,
			ScoreTotal: fmt.Sprintf("%.4f", s.ScoreTotal),
			EPSGrowth:  formatPct(s.EPSGrowth),
			RevGrowth:  formatPct(s.RevenueGrowth),
			PER:        formatFloat(s.PER),
			PBR:        formatFloat(s.PBR),
			ROE:        formatPct(s.ROE),
			Momentum:   make(map[contracts.Horizon]string, len(contracts.Horizons)),
		}
		m, ok := momentumByTicker[s.Ticker]
		for _, h := range contracts.Horizons {
			if !ok {
				r.Momentum[h] = "-"
				continue
			}
			r.Momentum[h] = formatScorePct(m.Horizons[h].Score)
		}
		rows = append(rows, r)
	}

	asOf := "-"
	if !result.AsOf.IsZero() {
		asOf = result.AsOf.Format("2006-01-02")
	}

	return page{
		GeneratedAt: result.GeneratedAt.Format(time.RFC3339),
		AsOf:        asOf,
		Universe:    result.Universe,
		Failed:      result.Failed,
		Horizons:    contracts.Horizons,
		Rows:        rows,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

func formatScorePct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", *v*100)
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>TOPIX Core/Large Ranking</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
th { background: #f0f0f0; }
td:nth-child(2) { text-align: left; }
.meta { color: #666; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>TOPIX Core/Large Ranking</h1>
<p class="meta">Generated {{.GeneratedAt}} · Prices as of {{.AsOf}} · Universe {{.Universe}} tickers ({{.Failed}} failed)</p>
<table>
<tr>
<th>#</th><th>Ticker</th><th>Score</th>
<th>EPS growth</th><th>Revenue growth</th><th>PER</th><th>PBR</th><th>ROE</th>
{{range .Horizons}}<th>{{.}}</th>{{end}}
</tr>
{{range .Rows}}
<tr>
<td>{{.Rank}}</td><td>{{.Ticker}}</td><td>{{.ScoreTotal}}</td>
<td>{{.EPSGrowth}}</td><td>{{.RevGrowth}}</td><td>{{.PER}}</td><td>{{.PBR}}</td><td>{{.ROE}}</td>
{{$m := .Momentum}}{{range $.Horizons}}<td>{{index $m .}}</td>{{end}}
</tr>
{{end}}
</table>
</body>
</html>
`
