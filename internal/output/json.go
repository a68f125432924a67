package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/duelbench/duelbench/internal/metrics"
)

// DefaultReportPath names the report file from the wall clock.
func DefaultReportPath(now time.Time) string {
	return fmt.Sprintf("duelbench_report_%s.json", now.Format("20060102_150405"))
}

// SaveReport persists a report as indented JSON.
func SaveReport(report *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	return f.Close()
}

// LoadReport parses a previously saved report. Loading what SaveReport wrote
// reproduces the original report.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report file %s: %w", path, err)
	}
	return &report, nil
}

// outcomeDump is the envelope for the detailed per-request dump.
type outcomeDump struct {
	RunID    string            `json:"run_id"`
	Outcomes []metrics.Outcome `json:"outcomes"`
}

// SaveOutcomes writes every raw outcome of a run for offline analysis.
func SaveOutcomes(runID string, outcomes []metrics.Outcome, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create outcome file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomeDump{RunID: runID, Outcomes: outcomes}); err != nil {
		f.Close()
		return fmt.Errorf("encode outcomes: %w", err)
	}
	return f.Close()
}
