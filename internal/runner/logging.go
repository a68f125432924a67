package runner

import (
	"context"

	"github.com/duelbench/duelbench/internal/metrics"
)

// FailureLogger receives failing outcomes as they complete.
type FailureLogger interface {
	LogFailure(outcome metrics.Outcome)
}

// loggingExecutor wraps an Executor with failure logging.
type loggingExecutor struct {
	inner  Executor
	logger FailureLogger
}

// WithLogging wraps an Executor so failing outcomes are reported to logger
// as they complete.
func WithLogging(exec Executor, logger FailureLogger) Executor {
	if logger == nil {
		return exec
	}
	return &loggingExecutor{
		inner:  exec,
		logger: logger,
	}
}

func (l *loggingExecutor) Execute(ctx context.Context, index int) metrics.Outcome {
	outcome := l.inner.Execute(ctx, index)
	if outcome.Classification != metrics.ClassSuccess {
		l.logger.LogFailure(outcome)
	}
	return outcome
}
