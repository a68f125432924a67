package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duelbench/duelbench/internal/profile"
)

func TestListenAddr(t *testing.T) {
	tests := []struct {
		name string
		port int
		env  string
		want string
	}{
		{"flag wins", 9000, "7000", ":9000"},
		{"env fallback", 0, "7000", ":7000"},
		{"default", 0, "", ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.env)
			if got := listenAddr(tt.port); got != tt.want {
				t.Errorf("listenAddr(%d) = %q, want %q", tt.port, got, tt.want)
			}
		})
	}
}

func TestSimulatorPassesThrough(t *testing.T) {
	sim := newSimulator(profile.NewHandler(nil), 0, 0, 0)

	req := httptest.NewRequest(http.MethodPost, "/process-profile",
		strings.NewReader(`{"name":"ada","email":"ada@example.com"}`))
	rec := httptest.NewRecorder()
	sim.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestSimulatorAlwaysFails(t *testing.T) {
	sim := newSimulator(profile.NewHandler(nil), 0, 0, 1.0)

	req := httptest.NewRequest(http.MethodPost, "/process-profile",
		strings.NewReader(`{"name":"ada","email":"ada@example.com"}`))
	rec := httptest.NewRecorder()
	sim.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding 503 body: %v", err)
	}
	if body["error"] != "simulated overload" {
		t.Errorf("error = %q, want %q", body["error"], "simulated overload")
	}
}

func TestSimulatorDelay(t *testing.T) {
	sim := newSimulator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), 30*time.Millisecond, 0, 0)

	start := time.Now()
	rec := httptest.NewRecorder()
	sim.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the configured delay", elapsed)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
