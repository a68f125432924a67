package runner

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/duelbench/duelbench/internal/metrics"
)

// Runner executes a fixed number of requests against one target through a
// bounded worker pool.
type Runner struct {
	opt       Options
	completed int64
}

// New creates a Runner with normalized options.
func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Completed reports how many outcomes have finished so far. It never blocks
// and is safe to call concurrently with Run.
func (r *Runner) Completed() int64 {
	return atomic.LoadInt64(&r.completed)
}

// Run executes the configured number of requests and returns their outcomes.
// Every index in [0, Requests) is claimed by exactly one worker; completion
// order is unspecified. Canceling ctx stops further indices from being
// issued, while requests already claimed run to their own deadlines, so the
// returned slice is always a valid (possibly partial) outcome set.
func (r *Runner) Run(ctx context.Context) []metrics.Outcome {
	if r.opt.Requests == 0 || r.opt.Executor == nil {
		return nil
	}

	indices := make(chan int, r.opt.Workers)
	limiter := r.opt.LimiterFactory(r.opt.Rate)

	// Single scheduler goroutine owns pacing so a wide worker pool cannot
	// overshoot the configured rate in bursts.
	go func() {
		defer close(indices)
		for index := 0; index < r.opt.Requests; index++ {
			if ctx.Err() != nil {
				return
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case indices <- index:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Claimed requests finish against their own per-request deadlines even
	// after the run context is canceled.
	execCtx := context.WithoutCancel(ctx)

	outcomes := make([]metrics.Outcome, 0, r.opt.Requests)
	var mu sync.Mutex

	var wg sync.WaitGroup
	wg.Add(r.opt.Workers)
	for i := 0; i < r.opt.Workers; i++ {
		go func() {
			defer wg.Done()
			for index := range indices {
				outcome := r.opt.Executor.Execute(execCtx, index)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
				atomic.AddInt64(&r.completed, 1)
			}
		}()
	}
	wg.Wait()

	return outcomes
}
