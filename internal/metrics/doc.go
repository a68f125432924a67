// Package metrics defines request outcomes and their reduction to per-target
// statistics.
//
// Every executed request produces exactly one [Outcome] carrying its latency
// and a [Classification] from a fixed taxonomy. A completed outcome set is
// reduced with [Aggregate] into a [TargetResult].
//
// # Classification
//
// Executors never return errors to the worker pool; failures are classified
// instead:
//   - [ClassSuccess]: 2xx response fully received
//   - [ClassHTTPError]: response received with a non-2xx status
//   - [ClassTimeout]: the per-request deadline elapsed
//   - [ClassNetworkError]: connect, DNS, or transport failure
//   - [ClassOther]: anything unrecognized
//
// [Classify] maps transport errors onto the taxonomy; [HTTPStatusError]
// carries non-2xx statuses through it.
//
// # Aggregation
//
// [Aggregate] is a pure reduction over a slice of outcomes. It is
// order-independent: permuting the input yields an identical [TargetResult],
// so results never depend on which worker finished first.
//
// Latency statistics are computed from an HDR histogram at microsecond
// resolution with three significant figures. All quantiles and extrema are
// read from the same histogram, so min <= p50 <= p95 <= p99 <= max holds at
// recording precision.
package metrics
