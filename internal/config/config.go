// Package config defines the benchmark configuration, loaded from
// command-line flags with optional JSON or YAML config files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/duelbench/duelbench/internal/profile"
)

// Labels of the two deployment variants under comparison.
const (
	TargetDocker = "docker"
	TargetZip    = "zip"
)

// Target is one endpoint under test, fixed for the duration of a run.
type Target struct {
	Label   string
	URL     string
	Headers map[string]string
}

// Config holds the full benchmark run configuration.
type Config struct {
	Requests int           `mapstructure:"requests"`
	Workers  int           `mapstructure:"workers"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Rate     int           `mapstructure:"rate"`

	DockerURL  string `mapstructure:"docker_url"`
	ZipURL     string `mapstructure:"zip_url"`
	DockerOnly bool   `mapstructure:"docker_only"`
	ZipOnly    bool   `mapstructure:"zip_only"`

	Headers map[string]string `mapstructure:"headers"`
	Payload profile.Request   `mapstructure:"payload"`

	Output         string   `mapstructure:"output"`
	NoSave         bool     `mapstructure:"no_save"`
	DetailedOutput string   `mapstructure:"detailed_output"`
	HTMLOutput     string   `mapstructure:"html_output"`
	HistoryFile    string   `mapstructure:"history_file"`
	Thresholds     []string `mapstructure:"thresholds"`
	LogErrors      bool     `mapstructure:"log_errors"`
	Quiet          bool     `mapstructure:"quiet"`

	Tracing TracingConfig `mapstructure:"tracing"`

	// ConfigFile records which file the configuration was loaded from.
	ConfigFile string `mapstructure:"-"`
}

// TracingConfig controls OpenTelemetry trace export for benchmark requests.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	NoPropagate bool    `mapstructure:"no_propagate"`
}

// Enabled reports whether an export endpoint is configured, directly or via
// the standard OTEL environment variables.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || envOTLPEndpoint() != ""
}

// ShouldPropagate reports whether W3C trace context headers are injected
// into benchmark requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Enabled() && !t.NoPropagate
}

func envOTLPEndpoint() string {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

// DefaultPayload is the profile submitted to every target unless the config
// file overrides it.
func DefaultPayload() profile.Request {
	return profile.Request{
		Name:      "John Doe",
		Email:     "john@example.com",
		Age:       30,
		Interests: []string{"coding", "music", "travel"},
	}
}

// Validate checks the configuration, collecting every problem into a single
// ValidationError.
func (c *Config) Validate() error {
	var issues []string

	if c.DockerOnly && c.ZipOnly {
		issues = append(issues, "docker-only and zip-only are mutually exclusive")
	}
	if c.Requests < 0 {
		issues = append(issues, "requests must be zero or positive")
	}
	if c.Workers < 1 {
		issues = append(issues, "workers must be at least 1")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be positive")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be zero or positive")
	}
	if !c.ZipOnly && strings.TrimSpace(c.DockerURL) == "" {
		issues = append(issues, "docker URL is required unless zip-only is set")
	}
	if !c.DockerOnly && strings.TrimSpace(c.ZipURL) == "" {
		issues = append(issues, "zip URL is required unless docker-only is set")
	}
	if strings.TrimSpace(c.Payload.Name) == "" {
		issues = append(issues, "payload name must not be empty")
	}
	if strings.TrimSpace(c.Payload.Email) == "" {
		issues = append(issues, "payload email must not be empty")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Targets resolves the selected benchmark targets in configuration order:
// docker first, then zip.
func (c *Config) Targets() []Target {
	var targets []Target
	if !c.ZipOnly {
		targets = append(targets, Target{
			Label:   TargetDocker,
			URL:     strings.TrimSpace(c.DockerURL),
			Headers: c.Headers,
		})
	}
	if !c.DockerOnly {
		targets = append(targets, Target{
			Label:   TargetZip,
			URL:     strings.TrimSpace(c.ZipURL),
			Headers: c.Headers,
		})
	}
	return targets
}

// ValidationError aggregates configuration problems into one error.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.issues, "; ")
}

// Issues returns a copy of the individual problems.
func (e ValidationError) Issues() []string {
	out := make([]string, len(e.issues))
	copy(out, e.issues)
	return out
}
