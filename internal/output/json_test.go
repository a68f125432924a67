package output_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/duelbench/duelbench/internal/metrics"
	"github.com/duelbench/duelbench/internal/output"
)

func TestSaveLoadReportRoundTrip(t *testing.T) {
	report := &output.Report{
		RunID:       "01JABCDEF0123456789ABCDEFG",
		GeneratedAt: time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		RunConfig: output.RunConfig{
			RequestCount:  50,
			WorkerCount:   8,
			TimeoutMs:     5000,
			RatePerSecond: 25,
			Targets: []output.TargetInfo{
				{Label: "docker", URL: "http://localhost:8080/process-profile"},
				{Label: "zip", URL: "http://localhost:8081/process-profile"},
			},
		},
		Results: []metrics.TargetResult{
			{
				TargetLabel:  "docker",
				Total:        50,
				SuccessCount: 48,
				SuccessRate:  0.96,
				ErrorCounts:  map[metrics.Classification]int{metrics.ClassTimeout: 2},
				StatusCodes:  map[string]int{"200": 48},
				SampleErrors: []metrics.SampleError{
					{Index: 7, Classification: metrics.ClassTimeout, Detail: "context deadline exceeded"},
				},
				LatencyStats: &metrics.LatencyStats{
					MinMs: 10.5, MaxMs: 90.25, MeanMs: 42.125, StdDevMs: 12.5,
					P50Ms: 40, P95Ms: 80, P99Ms: 88,
				},
			},
			{
				TargetLabel: "zip",
				Total:       50,
				ErrorCounts: map[metrics.Classification]int{metrics.ClassNetworkError: 50},
			},
		},
		Comparison: &output.Delta{
			Winner: "docker", Loser: "zip",
			WinnerMeanMs: 42.125, LoserMeanMs: 60, DiffMs: 17.875, ImprovementPercent: 29.79,
		},
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := output.SaveReport(report, path); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	loaded, err := output.LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, report) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", loaded, report)
	}
}

func TestSaveReportIsIndented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := &output.Report{RunID: "run", GeneratedAt: time.Now().UTC()}
	if err := output.SaveReport(report, path); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"run_id\"") {
		t.Errorf("Expected indented JSON, got:\n%s", data)
	}
}

func TestLoadReportMissingFile(t *testing.T) {
	if _, err := output.LoadReport(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected an error for a missing report file")
	}
}

func TestSaveOutcomes(t *testing.T) {
	outcomes := []metrics.Outcome{
		{Index: 0, TargetLabel: "docker", LatencyMs: 12.5, Classification: metrics.ClassSuccess, StatusCode: 200},
		{Index: 1, TargetLabel: "docker", LatencyMs: 5000, Classification: metrics.ClassTimeout, ErrorDetail: "context deadline exceeded"},
	}

	path := filepath.Join(t.TempDir(), "outcomes.json")
	if err := output.SaveOutcomes("run42", outcomes, path); err != nil {
		t.Fatalf("SaveOutcomes failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading outcomes: %v", err)
	}

	var dump struct {
		RunID    string            `json:"run_id"`
		Outcomes []metrics.Outcome `json:"outcomes"`
	}
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatalf("parsing outcomes: %v", err)
	}
	if dump.RunID != "run42" {
		t.Errorf("run_id = %q, want %q", dump.RunID, "run42")
	}
	if len(dump.Outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(dump.Outcomes))
	}
	if dump.Outcomes[1].ErrorDetail != "context deadline exceeded" {
		t.Errorf("ErrorDetail = %q, want deadline message", dump.Outcomes[1].ErrorDetail)
	}
	// The duration twin stays internal; only latency_ms is serialized.
	if strings.Contains(string(data), `"Latency"`) {
		t.Errorf("Raw duration leaked into JSON:\n%s", data)
	}
}

func TestDefaultReportPath(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	got := output.DefaultReportPath(now)
	want := "duelbench_report_20260825_103000.json"
	if got != want {
		t.Errorf("DefaultReportPath = %q, want %q", got, want)
	}
}
