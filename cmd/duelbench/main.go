package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/duelbench/duelbench/internal/config"
	"github.com/duelbench/duelbench/internal/httpclient"
	"github.com/duelbench/duelbench/internal/metrics"
	"github.com/duelbench/duelbench/internal/output"
	"github.com/duelbench/duelbench/internal/runner"
	"github.com/duelbench/duelbench/internal/threshold"
	"github.com/duelbench/duelbench/internal/tracing"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(outcome metrics.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[duelbench] %s request %d failed (%s): %s\n",
		outcome.TargetLabel, outcome.Index, outcome.Classification, outcome.ErrorDetail)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: tracing shutdown: %v\n", err)
		}
	}()

	client := httpclient.NewClient(cfg.Timeout)

	var (
		results     []metrics.TargetResult
		allOutcomes []metrics.Outcome
	)
	for _, target := range cfg.Targets() {
		exec, err := newHTTPExecutor(target, cfg.Payload, client, cfg.Timeout, provider)
		if err != nil {
			return err
		}

		var wrapped runner.Executor = exec
		if cfg.LogErrors {
			wrapped = runner.WithLogging(wrapped, &stderrFailureLogger{})
		}

		r := runner.New(runner.Options{
			Executor: wrapped,
			Requests: cfg.Requests,
			Workers:  cfg.Workers,
			Rate:     cfg.Rate,
		})

		var progress *output.ProgressReporter
		if !cfg.Quiet {
			fmt.Fprintf(os.Stderr, "Benchmarking %s (%s)\n", target.Label, target.URL)
			progress = output.NewProgressReporter(target.Label, cfg.Requests, r, progressInterval, os.Stderr)
			progress.Start()
		}

		outcomes := r.Run(ctx)
		if progress != nil {
			progress.Stop()
		}

		results = append(results, metrics.Aggregate(target.Label, outcomes))
		if cfg.DetailedOutput != "" {
			allOutcomes = append(allOutcomes, outcomes...)
		}

		if ctx.Err() != nil {
			if !cfg.Quiet {
				fmt.Fprintln(os.Stderr, "Interrupted; reporting completed requests only.")
			}
			break
		}
	}

	report := output.BuildReport(results, runConfigFor(cfg))

	evaluator := threshold.NewEvaluator(thresholds)
	thresholdResults := make(map[string][]threshold.Result)
	failedRules := 0
	for _, result := range results {
		rules := evaluator.Evaluate(result)
		if len(rules) == 0 {
			continue
		}
		thresholdResults[result.TargetLabel] = rules
		for _, rule := range rules {
			if !rule.Pass {
				failedRules++
			}
		}
	}

	output.PrintReport(os.Stdout, report)
	if len(thresholds) > 0 {
		fmt.Fprintln(os.Stdout, "\nThresholds:")
		for _, result := range results {
			for _, rule := range thresholdResults[result.TargetLabel] {
				fmt.Fprintf(os.Stdout, "  [%s] %s\n", result.TargetLabel, rule.Message)
			}
		}
	}

	if !cfg.NoSave {
		path := cfg.Output
		if path == "" {
			path = output.DefaultReportPath(time.Now())
		}
		if err := output.SaveReport(report, path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else if !cfg.Quiet {
			fmt.Fprintf(os.Stdout, "\nReport saved to %s\n", path)
		}
	}
	if cfg.DetailedOutput != "" {
		if err := output.SaveOutcomes(report.RunID, allOutcomes, cfg.DetailedOutput); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if cfg.HTMLOutput != "" {
		if err := writeHTMLFile(cfg.HTMLOutput, report, thresholdResults); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if cfg.HistoryFile != "" {
		if err := output.AppendHistory(cfg.HistoryFile, report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if failedRules > 0 {
		return fmt.Errorf("%d threshold(s) failed", failedRules)
	}
	return nil
}

func runConfigFor(cfg *config.Config) output.RunConfig {
	runCfg := output.RunConfig{
		RequestCount:  cfg.Requests,
		WorkerCount:   cfg.Workers,
		TimeoutMs:     cfg.Timeout.Milliseconds(),
		RatePerSecond: cfg.Rate,
	}
	for _, target := range cfg.Targets() {
		runCfg.Targets = append(runCfg.Targets, output.TargetInfo{Label: target.Label, URL: target.URL})
	}
	return runCfg
}

func writeHTMLFile(path string, report *output.Report, thresholds map[string][]threshold.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create HTML report: %w", err)
	}
	if err := output.WriteHTMLReport(f, report, thresholds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
