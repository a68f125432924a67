// Package threshold parses and evaluates pass/fail rules against benchmark
// results, such as "latency:p95 < 250" or "success:rate >= 0.99".
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/duelbench/duelbench/internal/metrics"
)

// Threshold is one parsed pass/fail rule.
type Threshold struct {
	Metric    string  // "latency", "success", or "errors"
	Aggregate string  // e.g. "p95", "rate", "count", or an error classification
	Operator  string  // <, <=, >, >=, ==, !=
	Value     float64 // comparison value; latency values are milliseconds
	Raw       string  // original rule text
}

// Result is the evaluation of one threshold against one target result.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

var rulePattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9_]+)\s*([<>=!]+)\s*([0-9.]+)$`)

var latencyAggregates = map[string]bool{
	"min": true, "max": true, "mean": true, "avg": true,
	"stddev": true, "p50": true, "p95": true, "p99": true,
}

var errorAggregates = map[string]bool{
	"count": true, "rate": true,
	string(metrics.ClassHTTPError):    true,
	string(metrics.ClassTimeout):      true,
	string(metrics.ClassNetworkError): true,
	string(metrics.ClassOther):        true,
}

// Parse converts a rule string of the form "metric:aggregate op value" into
// a Threshold.
func Parse(s string) (Threshold, error) {
	trimmed := strings.TrimSpace(s)
	matches := rulePattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q: expected \"metric:aggregate op value\"", s)
	}

	t := Threshold{
		Metric:    matches[1],
		Aggregate: matches[2],
		Operator:  matches[3],
		Raw:       trimmed,
	}

	switch t.Metric {
	case "latency":
		if !latencyAggregates[t.Aggregate] {
			return Threshold{}, fmt.Errorf("invalid threshold %q: unknown latency aggregate %q", s, t.Aggregate)
		}
	case "success":
		if t.Aggregate != "rate" && t.Aggregate != "count" {
			return Threshold{}, fmt.Errorf("invalid threshold %q: success supports rate or count, got %q", s, t.Aggregate)
		}
	case "errors":
		if !errorAggregates[t.Aggregate] {
			return Threshold{}, fmt.Errorf("invalid threshold %q: unknown errors aggregate %q", s, t.Aggregate)
		}
	default:
		return Threshold{}, fmt.Errorf("invalid threshold %q: unknown metric %q", s, t.Metric)
	}

	switch t.Operator {
	case "<", "<=", ">", ">=", "==", "!=":
	default:
		return Threshold{}, fmt.Errorf("invalid threshold %q: unsupported operator %q", s, t.Operator)
	}

	value, err := strconv.ParseFloat(matches[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q: bad value %q", s, matches[4])
	}
	t.Value = value

	return t, nil
}

// ParseMultiple parses a list of rule strings, failing on the first bad one.
func ParseMultiple(rules []string) ([]Threshold, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	parsed := make([]Threshold, 0, len(rules))
	for _, rule := range rules {
		t, err := Parse(rule)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, t)
	}
	return parsed, nil
}

// Evaluator applies a rule set to target results.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates an evaluator over the given rules.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks every rule against one target's result.
func (e *Evaluator) Evaluate(result metrics.TargetResult) []Result {
	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluate(t, result))
	}
	return results
}

func evaluate(t Threshold, result metrics.TargetResult) Result {
	actual, err := extractValue(t, result)
	if err != nil {
		return Result{
			Threshold: t,
			Pass:      false,
			Message:   fmt.Sprintf("✗ %s: %v", t.Raw, err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}
	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s (actual %.2f)", status, t.Raw, actual),
	}
}

func extractValue(t Threshold, result metrics.TargetResult) (float64, error) {
	switch t.Metric {
	case "latency":
		ls := result.LatencyStats
		if ls == nil {
			return 0, fmt.Errorf("no successful requests to measure latency")
		}
		switch t.Aggregate {
		case "min":
			return ls.MinMs, nil
		case "max":
			return ls.MaxMs, nil
		case "mean", "avg":
			return ls.MeanMs, nil
		case "stddev":
			return ls.StdDevMs, nil
		case "p50":
			return ls.P50Ms, nil
		case "p95":
			return ls.P95Ms, nil
		case "p99":
			return ls.P99Ms, nil
		}
	case "success":
		switch t.Aggregate {
		case "rate":
			return result.SuccessRate, nil
		case "count":
			return float64(result.SuccessCount), nil
		}
	case "errors":
		failures := result.Total - result.SuccessCount
		switch t.Aggregate {
		case "count":
			return float64(failures), nil
		case "rate":
			if result.Total == 0 {
				return 0, nil
			}
			return float64(failures) / float64(result.Total), nil
		default:
			return float64(result.ErrorCounts[metrics.Classification(t.Aggregate)]), nil
		}
	}
	return 0, fmt.Errorf("unsupported rule %s:%s", t.Metric, t.Aggregate)
}

// compareValues applies the operator with a small epsilon so equality holds
// across float formatting round trips.
func compareValues(actual float64, operator string, value float64) bool {
	const epsilon = 1e-9
	switch operator {
	case "<":
		return actual < value
	case "<=":
		return actual <= value+epsilon
	case ">":
		return actual > value
	case ">=":
		return actual >= value-epsilon
	case "==":
		return math.Abs(actual-value) < epsilon
	case "!=":
		return math.Abs(actual-value) >= epsilon
	}
	return false
}
