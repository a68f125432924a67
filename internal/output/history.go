package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// historyEntry is the compact one-line summary appended per run.
type historyEntry struct {
	RunID       string          `json:"run_id"`
	GeneratedAt string          `json:"generated_at"`
	Requests    int             `json:"requests"`
	Results     []targetSummary `json:"results"`
	Winner      string          `json:"winner,omitempty"`
}

type targetSummary struct {
	Label       string   `json:"label"`
	SuccessRate float64  `json:"success_rate"`
	MeanMs      *float64 `json:"mean_ms,omitempty"`
	P95Ms       *float64 `json:"p95_ms,omitempty"`
}

// AppendHistory appends one compact JSON line summarizing the run. A file
// lock keeps concurrent runs from interleaving partial lines.
func AppendHistory(path string, report *Report) error {
	entry := historyEntry{
		RunID:       report.RunID,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Requests:    report.RunConfig.RequestCount,
	}
	for _, result := range report.Results {
		summary := targetSummary{
			Label:       result.TargetLabel,
			SuccessRate: result.SuccessRate,
		}
		if ls := result.LatencyStats; ls != nil {
			summary.MeanMs = &ls.MeanMs
			summary.P95Ms = &ls.P95Ms
		}
		entry.Results = append(entry.Results, summary)
	}
	if report.Comparison != nil {
		entry.Winner = report.Comparison.Winner
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	line = append(line, '\n')

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock history file: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append history entry: %w", err)
	}
	return f.Close()
}
