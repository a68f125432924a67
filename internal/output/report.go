// Package output renders and persists benchmark reports: terminal text,
// indented JSON artifacts, standalone HTML pages, history lines, and the
// live progress display.
package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/duelbench/duelbench/internal/metrics"
)

// TargetInfo identifies one benchmarked endpoint inside a report.
type TargetInfo struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// RunConfig records the parameters a report was produced under.
type RunConfig struct {
	RequestCount  int          `json:"request_count"`
	WorkerCount   int          `json:"worker_count"`
	TimeoutMs     int64        `json:"timeout_ms"`
	RatePerSecond int          `json:"rate_per_second,omitempty"`
	Targets       []TargetInfo `json:"targets"`
}

// Delta is the pairwise comparison between exactly two target results,
// decided by mean latency over successful requests.
type Delta struct {
	Winner             string  `json:"winner"`
	Loser              string  `json:"loser"`
	WinnerMeanMs       float64 `json:"winner_mean_ms"`
	LoserMeanMs        float64 `json:"loser_mean_ms"`
	DiffMs             float64 `json:"diff_ms"`
	ImprovementPercent float64 `json:"improvement_percent"`
}

// Report is the comparison artifact produced by one run.
type Report struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	RunConfig   RunConfig              `json:"run_config"`
	Results     []metrics.TargetResult `json:"results"`
	Comparison  *Delta                 `json:"comparison,omitempty"`
}

// BuildReport assembles the report. Results keep configuration order, never
// performance order; the comparison is attached only when exactly two
// targets both have successful requests.
func BuildReport(results []metrics.TargetResult, runCfg RunConfig) *Report {
	report := &Report{
		RunID:       ulid.Make().String(),
		GeneratedAt: time.Now().UTC(),
		RunConfig:   runCfg,
		Results:     results,
	}
	if len(results) == 2 {
		if delta, ok := CompareResults(results[0], results[1]); ok {
			report.Comparison = &delta
		}
	}
	return report
}

// CompareResults computes the latency delta between two results. ok is false
// when either side has no successful requests to compare.
func CompareResults(a, b metrics.TargetResult) (Delta, bool) {
	if a.LatencyStats == nil || b.LatencyStats == nil {
		return Delta{}, false
	}
	winner, loser := a, b
	if b.LatencyStats.MeanMs < a.LatencyStats.MeanMs {
		winner, loser = b, a
	}
	delta := Delta{
		Winner:       winner.TargetLabel,
		Loser:        loser.TargetLabel,
		WinnerMeanMs: winner.LatencyStats.MeanMs,
		LoserMeanMs:  loser.LatencyStats.MeanMs,
		DiffMs:       loser.LatencyStats.MeanMs - winner.LatencyStats.MeanMs,
	}
	if delta.LoserMeanMs > 0 {
		delta.ImprovementPercent = delta.DiffMs / delta.LoserMeanMs * 100
	}
	return delta, true
}

// PrintReport writes the human-readable comparison summary.
func PrintReport(w io.Writer, report *Report) {
	fmt.Fprintln(w, "\n--- Deployment Comparison Results ---")
	fmt.Fprintf(w, "Run ID:     %s\n", report.RunID)
	fmt.Fprintf(w, "Generated:  %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Run:        %d requests per target, %d workers, timeout %dms",
		report.RunConfig.RequestCount, report.RunConfig.WorkerCount, report.RunConfig.TimeoutMs)
	if report.RunConfig.RatePerSecond > 0 {
		fmt.Fprintf(w, ", %d req/s", report.RunConfig.RatePerSecond)
	}
	fmt.Fprintln(w)

	for _, result := range report.Results {
		printTargetResult(w, result, report.RunConfig)
	}

	if len(report.Results) == 2 {
		printComparison(w, report)
	}
}

func printTargetResult(w io.Writer, result metrics.TargetResult, runCfg RunConfig) {
	fmt.Fprintf(w, "\nTarget: %s", result.TargetLabel)
	if url := targetURL(runCfg, result.TargetLabel); url != "" {
		fmt.Fprintf(w, " (%s)", url)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Requests:        %d\n", result.Total)
	fmt.Fprintf(w, "  Successful:      %d (%.1f%%)\n", result.SuccessCount, result.SuccessRate*100)

	if ls := result.LatencyStats; ls != nil {
		fmt.Fprintln(w, "  Latency (ms):")
		fmt.Fprintf(w, "    Min:           %.2f\n", ls.MinMs)
		fmt.Fprintf(w, "    Mean:          %.2f\n", ls.MeanMs)
		fmt.Fprintf(w, "    StdDev:        %.2f\n", ls.StdDevMs)
		fmt.Fprintf(w, "    P50:           %.2f\n", ls.P50Ms)
		fmt.Fprintf(w, "    P95:           %.2f\n", ls.P95Ms)
		fmt.Fprintf(w, "    P99:           %.2f\n", ls.P99Ms)
		fmt.Fprintf(w, "    Max:           %.2f\n", ls.MaxMs)
	} else {
		fmt.Fprintln(w, "  Latency:         no successful requests")
	}

	if len(result.ErrorCounts) > 0 {
		fmt.Fprintln(w, "  Errors:")
		for _, class := range sortedClassifications(result.ErrorCounts) {
			fmt.Fprintf(w, "    %-15s %d\n", string(class)+":", result.ErrorCounts[class])
		}
	}
	if len(result.StatusCodes) > 0 {
		fmt.Fprintln(w, "  Status Codes:")
		for _, code := range sortedKeys(result.StatusCodes) {
			fmt.Fprintf(w, "    %-15s %d\n", code+":", result.StatusCodes[code])
		}
	}
	if len(result.SampleErrors) > 0 {
		fmt.Fprintln(w, "  Sample Errors:")
		for _, sample := range result.SampleErrors {
			fmt.Fprintf(w, "    [%d] %s: %s\n", sample.Index, sample.Classification, sample.Detail)
		}
	}
}

func printComparison(w io.Writer, report *Report) {
	fmt.Fprintln(w, "\nComparison:")
	delta := report.Comparison
	if delta == nil {
		fmt.Fprintln(w, "  Not enough successful requests to compare.")
		return
	}
	if delta.DiffMs == 0 {
		fmt.Fprintf(w, "  No measurable difference (mean %.2fms on both targets)\n", delta.WinnerMeanMs)
		return
	}
	fmt.Fprintf(w, "  Winner: %s (%.1f%% faster)\n", delta.Winner, delta.ImprovementPercent)
	fmt.Fprintf(w, "  Mean latency: %.2fms vs %.2fms (diff %.2fms)\n",
		delta.WinnerMeanMs, delta.LoserMeanMs, delta.DiffMs)
}

func targetURL(runCfg RunConfig, label string) string {
	for _, target := range runCfg.Targets {
		if target.Label == label {
			return target.URL
		}
	}
	return ""
}

func sortedClassifications(counts map[metrics.Classification]int) []metrics.Classification {
	classes := make([]metrics.Classification, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
