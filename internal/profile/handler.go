package profile

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes bounds how much of a request body the handler will read.
const maxBodyBytes = 1 << 20

// Handler serves the profile transformation endpoint.
type Handler struct {
	now func() time.Time
}

// NewHandler creates the endpoint handler. A nil clock uses wall time; tests
// inject a fixed clock to pin CreatedAt.
func NewHandler(now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{now: now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed, use POST"})
		return
	}

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		RespondJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	RespondJSON(w, http.StatusOK, Response{
		Message:          "Profile processed successfully",
		OriginalInput:    req,
		ProcessedProfile: Process(req, h.now()),
	})
}

// RespondJSON writes payload as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
