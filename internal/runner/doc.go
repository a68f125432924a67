// Package runner provides the worker pool that drives one benchmark run.
//
// A [Runner] issues exactly Requests unique indices over a channel and a
// fixed set of worker goroutines claims them. Workers block only on claiming
// an index and on the request itself.
//
// # Executor Interface
//
// The [Executor] interface defines what a runner executes:
//
//	type Executor interface {
//		Execute(ctx context.Context, index int) metrics.Outcome
//	}
//
// Executors never return errors; every call yields exactly one outcome, with
// failures expressed through the outcome's classification.
//
// # Pacing
//
// With Options.Rate set, index issuance is paced through a token bucket from
// [golang.org/x/time/rate]. Pacing happens on the scheduler goroutine so a
// wide worker pool cannot overshoot in bursts.
//
// # Interruption
//
// Canceling the run context stops new indices from being issued. Requests
// already in flight are detached from the run context and finish against
// their own deadlines, so an interrupted run still ends with a valid partial
// outcome set.
//
// # Middleware
//
// [WithLogging] wraps an Executor to stream failing outcomes to a
// [FailureLogger] as they complete.
package runner
