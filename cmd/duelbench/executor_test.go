package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duelbench/duelbench/internal/config"
	"github.com/duelbench/duelbench/internal/httpclient"
	"github.com/duelbench/duelbench/internal/metrics"
	"github.com/duelbench/duelbench/internal/profile"
)

func newTestExecutor(t *testing.T, target config.Target, timeout time.Duration) *httpExecutor {
	t.Helper()
	exec, err := newHTTPExecutor(target, config.DefaultPayload(), httpclient.NewClient(timeout), timeout, nil)
	if err != nil {
		t.Fatalf("newHTTPExecutor failed: %v", err)
	}
	return exec
}

func TestExecutorSuccess(t *testing.T) {
	srv := httptest.NewServer(profile.NewHandler(nil))
	defer srv.Close()

	exec := newTestExecutor(t, config.Target{Label: "docker", URL: srv.URL}, 5*time.Second)
	outcome := exec.Execute(context.Background(), 3)

	if outcome.Classification != metrics.ClassSuccess {
		t.Fatalf("Classification = %q, want success (detail: %s)", outcome.Classification, outcome.ErrorDetail)
	}
	if outcome.Index != 3 || outcome.TargetLabel != "docker" {
		t.Errorf("identity = (%d, %q), want (3, docker)", outcome.Index, outcome.TargetLabel)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", outcome.StatusCode)
	}
	if outcome.LatencyMs <= 0 {
		t.Errorf("LatencyMs = %v, want > 0", outcome.LatencyMs)
	}
	if outcome.ErrorDetail != "" {
		t.Errorf("ErrorDetail = %q, want empty", outcome.ErrorDetail)
	}
}

func TestExecutorSendsProfilePayload(t *testing.T) {
	var got profile.Request
	var contentType, custom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		custom = r.Header.Get("X-Run")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		profile.RespondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}))
	defer srv.Close()

	target := config.Target{Label: "zip", URL: srv.URL, Headers: map[string]string{"X-Run": "1"}}
	outcome := newTestExecutor(t, target, 5*time.Second).Execute(context.Background(), 0)

	if outcome.Classification != metrics.ClassSuccess {
		t.Fatalf("Classification = %q, want success", outcome.Classification)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
	if custom != "1" {
		t.Errorf("X-Run = %q, want 1", custom)
	}
	if want := config.DefaultPayload(); got.Name != want.Name || got.Email != want.Email {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
}

func TestExecutorHTTPErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"json error field", http.StatusServiceUnavailable, `{"error":"simulated overload"}`, "simulated overload"},
		{"json message field", http.StatusBadRequest, `{"message":"name is required"}`, "name is required"},
		{"plain text body", http.StatusInternalServerError, "boom", "boom"},
		{"empty body", http.StatusBadGateway, "", "502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			outcome := newTestExecutor(t, config.Target{Label: "docker", URL: srv.URL}, 5*time.Second).
				Execute(context.Background(), 0)

			if outcome.Classification != metrics.ClassHTTPError {
				t.Fatalf("Classification = %q, want http_error", outcome.Classification)
			}
			if outcome.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", outcome.StatusCode, tt.status)
			}
			if outcome.ErrorDetail != tt.wantDetail {
				t.Errorf("ErrorDetail = %q, want %q", outcome.ErrorDetail, tt.wantDetail)
			}
		})
	}
}

func TestExecutorTimeoutReportsBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	timeout := 50 * time.Millisecond
	outcome := newTestExecutor(t, config.Target{Label: "docker", URL: srv.URL}, timeout).
		Execute(context.Background(), 1)

	if outcome.Classification != metrics.ClassTimeout {
		t.Fatalf("Classification = %q, want timeout (detail: %s)", outcome.Classification, outcome.ErrorDetail)
	}
	// Timed-out requests report exactly the configured budget.
	if outcome.LatencyMs != 50 {
		t.Errorf("LatencyMs = %v, want 50", outcome.LatencyMs)
	}
	if outcome.ErrorDetail == "" {
		t.Error("Expected a non-empty error detail for a timeout")
	}
}

func TestExecutorNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	outcome := newTestExecutor(t, config.Target{Label: "zip", URL: url}, time.Second).
		Execute(context.Background(), 0)

	if outcome.Classification != metrics.ClassNetworkError {
		t.Fatalf("Classification = %q, want network_error (detail: %s)", outcome.Classification, outcome.ErrorDetail)
	}
	if outcome.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 when no response arrived", outcome.StatusCode)
	}
	if outcome.ErrorDetail == "" {
		t.Error("Expected a non-empty error detail for a connection failure")
	}
}
