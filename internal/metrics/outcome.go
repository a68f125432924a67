package metrics

import "time"

// Classification buckets a request outcome into a fixed taxonomy.
type Classification string

const (
	ClassSuccess      Classification = "success"
	ClassHTTPError    Classification = "http_error"
	ClassTimeout      Classification = "timeout"
	ClassNetworkError Classification = "network_error"
	ClassOther        Classification = "other"
)

// Outcome is the immutable record of one executed request. Exactly one is
// produced per claimed index, whatever happened on the wire.
type Outcome struct {
	Index          int            `json:"index"`
	TargetLabel    string         `json:"target_label"`
	IssuedAt       time.Time      `json:"issued_at"`
	Latency        time.Duration  `json:"-"`
	LatencyMs      float64        `json:"latency_ms"`
	Classification Classification `json:"classification"`
	StatusCode     int            `json:"status_code,omitempty"`
	ErrorDetail    string         `json:"error_detail,omitempty"`
}
