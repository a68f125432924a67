package metrics

import (
	"sort"
	"strconv"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// maxSampleErrors caps how many representative failures a result retains.
const maxSampleErrors = 3

// Histogram bounds in microseconds: 1µs to 60s at 3 significant figures.
const (
	lowestTrackableUs  = 1
	highestTrackableUs = 60_000_000
	sigFigs            = 3
)

// LatencyStats summarizes the latency distribution of successful outcomes.
// All values are milliseconds derived from one histogram.
type LatencyStats struct {
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	MeanMs   float64 `json:"mean_ms"`
	StdDevMs float64 `json:"stddev_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// SampleError is a representative failure retained for reporting.
type SampleError struct {
	Index          int            `json:"index"`
	Classification Classification `json:"classification"`
	StatusCode     int            `json:"status_code,omitempty"`
	Detail         string         `json:"detail,omitempty"`
}

// TargetResult is the aggregate over one target's complete outcome set.
// SuccessCount plus the sum of ErrorCounts always equals Total.
type TargetResult struct {
	TargetLabel  string                 `json:"target_label"`
	Total        int                    `json:"total"`
	SuccessCount int                    `json:"success_count"`
	SuccessRate  float64                `json:"success_rate"`
	ErrorCounts  map[Classification]int `json:"error_counts"`
	StatusCodes  map[string]int         `json:"status_codes,omitempty"`
	SampleErrors []SampleError          `json:"sample_errors,omitempty"`
	LatencyStats *LatencyStats          `json:"latency_stats,omitempty"`
}

// Aggregate reduces an outcome set to a TargetResult. The reduction is pure
// and order-independent: permuting outcomes yields an identical result.
// LatencyStats covers successful outcomes only and is nil when there were
// none.
func Aggregate(label string, outcomes []Outcome) TargetResult {
	result := TargetResult{
		TargetLabel: label,
		Total:       len(outcomes),
		ErrorCounts: make(map[Classification]int),
	}

	hist := hdrhistogram.New(lowestTrackableUs, highestTrackableUs, sigFigs)

	var failures []SampleError
	for _, o := range outcomes {
		if o.Classification == ClassSuccess {
			result.SuccessCount++
			recordLatency(hist, o.Latency)
		} else {
			result.ErrorCounts[o.Classification]++
			failures = append(failures, SampleError{
				Index:          o.Index,
				Classification: o.Classification,
				StatusCode:     o.StatusCode,
				Detail:         o.ErrorDetail,
			})
		}
		if o.StatusCode != 0 {
			if result.StatusCodes == nil {
				result.StatusCodes = make(map[string]int)
			}
			result.StatusCodes[strconv.Itoa(o.StatusCode)]++
		}
	}

	if result.Total > 0 {
		result.SuccessRate = float64(result.SuccessCount) / float64(result.Total)
	}
	if result.SuccessCount > 0 {
		result.LatencyStats = &LatencyStats{
			MinMs:    usToMs(hist.Min()),
			MaxMs:    usToMs(hist.Max()),
			MeanMs:   hist.Mean() / 1000,
			StdDevMs: hist.StdDev() / 1000,
			P50Ms:    usToMs(hist.ValueAtQuantile(50)),
			P95Ms:    usToMs(hist.ValueAtQuantile(95)),
			P99Ms:    usToMs(hist.ValueAtQuantile(99)),
		}
	}
	result.SampleErrors = selectSampleErrors(failures)

	return result
}

// recordLatency clamps a latency to the trackable range before recording, so
// pathological values degrade to boundary buckets instead of being dropped.
func recordLatency(hist *hdrhistogram.Histogram, latency time.Duration) {
	us := latency.Microseconds()
	if us < lowestTrackableUs {
		us = lowestTrackableUs
	}
	if us > highestTrackableUs {
		us = highestTrackableUs
	}
	_ = hist.RecordValue(us)
}

// selectSampleErrors keeps the lowest-index failures so the retained samples
// do not depend on completion order.
func selectSampleErrors(failures []SampleError) []SampleError {
	if len(failures) == 0 {
		return nil
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })
	if len(failures) > maxSampleErrors {
		failures = failures[:maxSampleErrors]
	}
	return failures
}

func usToMs(us int64) float64 {
	return float64(us) / 1000
}
