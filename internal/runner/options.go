package runner

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/duelbench/duelbench/internal/metrics"
)

// Executor performs one request for a claimed index. Implementations must
// return an outcome for every call and must be safe for concurrent use.
type Executor interface {
	Execute(ctx context.Context, index int) metrics.Outcome
}

// Options configure a benchmark run.
type Options struct {
	Executor Executor // request executor (required)
	Requests int      // exact number of requests to issue
	Workers  int      // worker goroutine count (minimum 1)
	Rate     int      // requests per second (0 = unpaced)

	// LimiterFactory creates the pacing limiter. Overridable in tests.
	LimiterFactory func(rps int) *rate.Limiter
}

// normalize applies defaults for zero values.
func (o *Options) normalize() {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Requests < 0 {
		o.Requests = 0
	}
	if o.Rate < 0 {
		o.Rate = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
