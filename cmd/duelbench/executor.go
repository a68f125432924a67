package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duelbench/duelbench/internal/config"
	"github.com/duelbench/duelbench/internal/httpclient"
	"github.com/duelbench/duelbench/internal/metrics"
	"github.com/duelbench/duelbench/internal/tracing"
)

// maxDetailBytes bounds how much of an error response body is kept as detail.
const maxDetailBytes = 1024

// httpExecutor issues one POST per claimed index against a single target.
type httpExecutor struct {
	target   config.Target
	template *httpclient.Template
	client   *http.Client
	timeout  time.Duration
	provider *tracing.Provider
}

func newHTTPExecutor(target config.Target, payload any, client *http.Client, timeout time.Duration, provider *tracing.Provider) (*httpExecutor, error) {
	template, err := httpclient.NewTemplate(http.MethodPost, target.URL, target.Headers, payload)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target.Label, err)
	}
	return &httpExecutor{
		target:   target,
		template: template,
		client:   client,
		timeout:  timeout,
		provider: provider,
	}, nil
}

// Execute performs one request and always returns a classified outcome.
func (e *httpExecutor) Execute(ctx context.Context, index int) metrics.Outcome {
	issued := time.Now()
	outcome := metrics.Outcome{
		Index:       index,
		TargetLabel: e.target.Label,
		IssuedAt:    issued.UTC(),
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	reqCtx, span := tracing.StartRequestSpan(reqCtx, e.provider.Tracer(), e.target.Label, index)

	err := e.do(reqCtx, &outcome)
	latency := time.Since(issued)

	outcome.Classification = metrics.Classify(err)
	if outcome.Classification == metrics.ClassTimeout {
		// A timed-out request consumed the full budget; report the
		// configured boundary rather than the wall time measured around
		// the cancellation.
		latency = e.timeout
	}
	outcome.Latency = latency
	outcome.LatencyMs = float64(latency) / float64(time.Millisecond)
	if err != nil && outcome.ErrorDetail == "" {
		outcome.ErrorDetail = err.Error()
	}

	tracing.EndSpan(span, err,
		attribute.String("duelbench.classification", string(outcome.Classification)),
		attribute.Int("http.response.status_code", outcome.StatusCode),
	)
	return outcome
}

func (e *httpExecutor) do(ctx context.Context, outcome *metrics.Outcome) error {
	req, err := e.template.NewRequest(ctx)
	if err != nil {
		return err
	}
	if e.provider.ShouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	outcome.StatusCode = resp.StatusCode

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
	_, _ = io.Copy(io.Discard, resp.Body)
	outcome.ErrorDetail = errorDetail(snippet, resp.Status)
	return &metrics.HTTPStatusError{StatusCode: resp.StatusCode, Body: outcome.ErrorDetail}
}

// errorDetail extracts a human-readable message from an error response body,
// preferring the service's JSON error fields over the raw snippet.
func errorDetail(snippet []byte, status string) string {
	if gjson.ValidBytes(snippet) {
		body := gjson.ParseBytes(snippet)
		for _, key := range []string{"error", "message"} {
			if v := body.Get(key); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	if trimmed := strings.TrimSpace(string(snippet)); trimmed != "" {
		return trimmed
	}
	return status
}
