package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/duelbench/duelbench/internal/metrics"
	"github.com/duelbench/duelbench/internal/threshold"
)

// htmlData is the precomputed view model for the HTML template.
type htmlData struct {
	RunID       string
	GeneratedAt string
	ConfigLine  string
	Delta       *Delta
	Targets     []htmlTarget
	LatencyRows []htmlLatencyRow
	Thresholds  []htmlThresholdGroup
}

type htmlTarget struct {
	Label        string
	URL          string
	Total        int
	SuccessCount int
	FailureCount int
	SuccessRate  float64
	NoSuccesses  bool
	ErrorLines   []string
	SampleErrors []string
}

type htmlLatencyRow struct {
	Name   string
	Values []string
}

type htmlThresholdGroup struct {
	Label   string
	Results []threshold.Result
}

// WriteHTMLReport renders the report as a standalone HTML comparison page.
// thresholds maps target labels to their rule evaluations and may be nil.
func WriteHTMLReport(w io.Writer, report *Report, thresholds map[string][]threshold.Result) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatPercent": func(rate float64) string { return fmt.Sprintf("%.1f%%", rate*100) },
		"formatMs":      func(ms float64) string { return fmt.Sprintf("%.2f ms", ms) },
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parse HTML template: %w", err)
	}
	if err := tmpl.Execute(w, buildHTMLData(report, thresholds)); err != nil {
		return fmt.Errorf("render HTML report: %w", err)
	}
	return nil
}

func buildHTMLData(report *Report, thresholds map[string][]threshold.Result) htmlData {
	data := htmlData{
		RunID:       report.RunID,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Delta:       report.Comparison,
		ConfigLine: fmt.Sprintf("%d requests per target, %d workers, timeout %dms",
			report.RunConfig.RequestCount, report.RunConfig.WorkerCount, report.RunConfig.TimeoutMs),
	}
	if report.RunConfig.RatePerSecond > 0 {
		data.ConfigLine += fmt.Sprintf(", %d req/s", report.RunConfig.RatePerSecond)
	}

	for _, result := range report.Results {
		target := htmlTarget{
			Label:        result.TargetLabel,
			URL:          targetURL(report.RunConfig, result.TargetLabel),
			Total:        result.Total,
			SuccessCount: result.SuccessCount,
			FailureCount: result.Total - result.SuccessCount,
			SuccessRate:  result.SuccessRate,
			NoSuccesses:  result.LatencyStats == nil,
		}
		for _, class := range sortedClassifications(result.ErrorCounts) {
			target.ErrorLines = append(target.ErrorLines,
				fmt.Sprintf("%s: %d", class, result.ErrorCounts[class]))
		}
		for _, sample := range result.SampleErrors {
			target.SampleErrors = append(target.SampleErrors,
				fmt.Sprintf("[%d] %s: %s", sample.Index, sample.Classification, sample.Detail))
		}
		data.Targets = append(data.Targets, target)

		if rules := thresholds[result.TargetLabel]; len(rules) > 0 {
			data.Thresholds = append(data.Thresholds, htmlThresholdGroup{
				Label:   result.TargetLabel,
				Results: rules,
			})
		}
	}

	data.LatencyRows = buildLatencyRows(report.Results)
	return data
}

func buildLatencyRows(results []metrics.TargetResult) []htmlLatencyRow {
	rows := []struct {
		name  string
		value func(*metrics.LatencyStats) float64
	}{
		{"Min", func(ls *metrics.LatencyStats) float64 { return ls.MinMs }},
		{"Mean", func(ls *metrics.LatencyStats) float64 { return ls.MeanMs }},
		{"StdDev", func(ls *metrics.LatencyStats) float64 { return ls.StdDevMs }},
		{"P50", func(ls *metrics.LatencyStats) float64 { return ls.P50Ms }},
		{"P95", func(ls *metrics.LatencyStats) float64 { return ls.P95Ms }},
		{"P99", func(ls *metrics.LatencyStats) float64 { return ls.P99Ms }},
		{"Max", func(ls *metrics.LatencyStats) float64 { return ls.MaxMs }},
	}

	out := make([]htmlLatencyRow, 0, len(rows))
	for _, row := range rows {
		values := make([]string, 0, len(results))
		for _, result := range results {
			if result.LatencyStats == nil {
				values = append(values, "-")
				continue
			}
			values = append(values, fmt.Sprintf("%.2f", row.value(result.LatencyStats)))
		}
		out = append(out, htmlLatencyRow{Name: row.name, Values: values})
	}
	return out
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>duelbench report {{.RunID}}</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #f4f5f7; color: #24292f; }
  .container { max-width: 960px; margin: 0 auto; padding: 24px; }
  header { background: linear-gradient(135deg, #1d4ed8, #7c3aed); color: #fff; border-radius: 10px; padding: 28px; margin-bottom: 24px; }
  header h1 { font-size: 1.5rem; margin-bottom: 6px; }
  header .meta { opacity: 0.85; font-size: 0.9rem; }
  .banner { background: #ecfdf5; border: 1px solid #6ee7b7; border-radius: 10px; padding: 16px 20px; margin-bottom: 24px; font-size: 1.05rem; }
  .banner strong { color: #047857; }
  .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(280px, 1fr)); gap: 16px; margin-bottom: 24px; }
  .card { background: #fff; border-radius: 10px; padding: 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
  .card h2 { font-size: 1.1rem; margin-bottom: 4px; }
  .card .url { color: #57606a; font-size: 0.8rem; word-break: break-all; margin-bottom: 12px; }
  .big { font-size: 2rem; font-weight: 700; }
  .big.ok { color: #047857; }
  .big.bad { color: #b91c1c; }
  .counts { color: #57606a; font-size: 0.85rem; margin-top: 4px; }
  .errors { margin-top: 12px; font-size: 0.85rem; }
  .errors li { list-style: none; color: #b91c1c; }
  .samples { margin-top: 8px; font-size: 0.78rem; color: #57606a; }
  .samples li { list-style: none; overflow-wrap: anywhere; }
  .section { background: #fff; border-radius: 10px; padding: 20px; margin-bottom: 24px; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
  .section h2 { font-size: 1.1rem; margin-bottom: 12px; }
  table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
  th, td { text-align: right; padding: 8px 12px; border-bottom: 1px solid #eaecef; }
  th:first-child, td:first-child { text-align: left; }
  thead th { color: #57606a; font-weight: 600; }
  .pass { color: #047857; }
  .fail { color: #b91c1c; }
  footer { text-align: center; color: #8b949e; font-size: 0.8rem; padding: 12px; }
</style>
</head>
<body>
<div class="container">
  <header>
    <h1>Deployment Comparison</h1>
    <div class="meta">Run {{.RunID}} · {{.GeneratedAt}} · {{.ConfigLine}}</div>
  </header>

  {{if .Delta}}
  <div class="banner">
    Winner: <strong>{{.Delta.Winner}}</strong>, {{printf "%.1f" .Delta.ImprovementPercent}}% faster
    ({{formatMs .Delta.WinnerMeanMs}} vs {{formatMs .Delta.LoserMeanMs}} mean)
  </div>
  {{end}}

  <div class="grid">
    {{range .Targets}}
    <div class="card">
      <h2>{{.Label}}</h2>
      <div class="url">{{.URL}}</div>
      <div class="big {{if .NoSuccesses}}bad{{else}}ok{{end}}">{{formatPercent .SuccessRate}}</div>
      <div class="counts">{{.SuccessCount}} of {{.Total}} successful{{if .FailureCount}}, {{.FailureCount}} failed{{end}}</div>
      {{if .ErrorLines}}
      <ul class="errors">
        {{range .ErrorLines}}<li>{{.}}</li>{{end}}
      </ul>
      {{end}}
      {{if .SampleErrors}}
      <ul class="samples">
        {{range .SampleErrors}}<li>{{.}}</li>{{end}}
      </ul>
      {{end}}
    </div>
    {{end}}
  </div>

  <div class="section">
    <h2>Latency (ms, successful requests)</h2>
    <table>
      <thead>
        <tr><th>Metric</th>{{range .Targets}}<th>{{.Label}}</th>{{end}}</tr>
      </thead>
      <tbody>
        {{range .LatencyRows}}
        <tr><td>{{.Name}}</td>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
        {{end}}
      </tbody>
    </table>
  </div>

  {{if .Thresholds}}
  <div class="section">
    <h2>Thresholds</h2>
    <table>
      <thead>
        <tr><th>Target</th><th style="text-align:left">Rule</th><th>Actual</th><th>Status</th></tr>
      </thead>
      <tbody>
        {{range $group := .Thresholds}}
        {{range $group.Results}}
        <tr>
          <td style="text-align:left">{{$group.Label}}</td>
          <td style="text-align:left">{{.Threshold.Raw}}</td>
          <td>{{printf "%.2f" .Actual}}</td>
          <td class="{{if .Pass}}pass{{else}}fail{{end}}">{{if .Pass}}pass{{else}}fail{{end}}</td>
        </tr>
        {{end}}
        {{end}}
      </tbody>
    </table>
  </div>
  {{end}}

  <footer>generated by duelbench</footer>
</div>
</body>
</html>
`
