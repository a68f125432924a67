package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/duelbench/duelbench/internal/profile"
)

func main() {
	port := flag.Int("port", 0, "listen port (overrides PORT)")
	delay := flag.Duration("delay", 0, "fixed artificial delay per request")
	jitter := flag.Duration("jitter", 0, "random extra delay, uniform in [0, jitter)")
	failRate := flag.Float64("fail-rate", 0, "fraction of requests answered with 503, in [0, 1]")
	flag.Parse()

	if *failRate < 0 || *failRate > 1 {
		log.Fatalf("fail-rate must be between 0 and 1, got %v", *failRate)
	}

	// Optional .env next to the binary, same lookup the deployed variants use.
	_ = godotenv.Load()

	handler := http.Handler(profile.NewHandler(nil))
	if *delay > 0 || *jitter > 0 || *failRate > 0 {
		handler = newSimulator(handler, *delay, *jitter, *failRate)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Handle rather than Method(POST, ...) so the endpoint's own 405 JSON
	// answer survives for other verbs.
	r.Handle("/process-profile", handler)
	r.Handle("/process-profile-docker", handler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		profile.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	addr := listenAddr(*port)
	log.Printf("profiled listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func listenAddr(port int) string {
	if port > 0 {
		return fmt.Sprintf(":%d", port)
	}
	if env := os.Getenv("PORT"); env != "" {
		return ":" + env
	}
	return ":8080"
}

// simulator injects deployment-variant behavior in front of the real
// handler: fixed delay, random jitter, and sporadic overload answers.
type simulator struct {
	next     http.Handler
	delay    time.Duration
	jitter   time.Duration
	failRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func newSimulator(next http.Handler, delay, jitter time.Duration, failRate float64) *simulator {
	return &simulator{
		next:     next,
		delay:    delay,
		jitter:   jitter,
		failRate: failRate,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if wait := s.delay + s.randomJitter(); wait > 0 {
		time.Sleep(wait)
	}
	if s.failRate > 0 && s.randomFloat() < s.failRate {
		profile.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "simulated overload"})
		return
	}
	s.next.ServeHTTP(w, r)
}

func (s *simulator) randomJitter() time.Duration {
	if s.jitter <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.rnd.Int63n(int64(s.jitter)))
}

func (s *simulator) randomFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}
