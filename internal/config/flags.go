package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Defaults applied before config files and flags.
const (
	DefaultRequests = 500
	DefaultWorkers  = 10
	DefaultTimeout  = 30 * time.Second
)

// newFlagCommand builds the cobra command that owns the flag surface. The
// command itself never runs; it exists for parsing and help rendering.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "duelbench",
		Short:         "Compare two deployment variants of an HTTP endpoint under load",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	flags.IntP("requests", "n", DefaultRequests, "Number of requests per target")
	flags.IntP("workers", "w", DefaultWorkers, "Number of concurrent workers")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout")
	flags.Int("rate", 0, "Requests per second per target (0 = unpaced)")

	flags.String("docker-url", "", "URL of the docker deployment variant")
	flags.String("zip-url", "", "URL of the zip deployment variant")
	flags.Bool("docker-only", false, "Benchmark only the docker variant")
	flags.Bool("zip-only", false, "Benchmark only the zip variant")
	flags.StringSliceP("header", "H", nil, "Extra request header as key=value (repeatable)")

	flags.StringP("output", "o", "", "Report file path (default duelbench_report_<timestamp>.json)")
	flags.Bool("no-save", false, "Print the report without persisting it")
	flags.String("detailed-output", "", "Also write every raw request outcome to this file")
	flags.String("html-output", "", "Also render the report as a standalone HTML page")
	flags.String("history-file", "", "Append a one-line run summary to this file")
	flags.StringSlice("threshold", nil, "Pass/fail rule such as 'latency:p95 < 250' (repeatable)")
	flags.Bool("log-errors", false, "Log each failed request to stderr as it happens")
	flags.BoolP("quiet", "q", false, "Suppress the live progress line")
	flags.String("config", "", "Path to a JSON or YAML config file")
}

// displayHelp prints usage to stdout.
func displayHelp(cmd *cobra.Command) {
	_ = cmd.Help()
}

// applyFlagOverrides copies explicitly set flags over the loaded
// configuration. Flags win over config file values.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("requests") {
		if v, err := flags.GetInt("requests"); err == nil {
			cfg.Requests = v
		}
	}
	if flags.Changed("workers") {
		if v, err := flags.GetInt("workers"); err == nil {
			cfg.Workers = v
		}
	}
	if flags.Changed("timeout") {
		if v, err := flags.GetDuration("timeout"); err == nil {
			cfg.Timeout = v
		}
	}
	if flags.Changed("rate") {
		if v, err := flags.GetInt("rate"); err == nil {
			cfg.Rate = v
		}
	}
	if flags.Changed("docker-url") {
		if v, err := flags.GetString("docker-url"); err == nil {
			cfg.DockerURL = v
		}
	}
	if flags.Changed("zip-url") {
		if v, err := flags.GetString("zip-url"); err == nil {
			cfg.ZipURL = v
		}
	}
	if flags.Changed("docker-only") {
		if v, err := flags.GetBool("docker-only"); err == nil {
			cfg.DockerOnly = v
		}
	}
	if flags.Changed("zip-only") {
		if v, err := flags.GetBool("zip-only"); err == nil {
			cfg.ZipOnly = v
		}
	}
	if flags.Changed("header") {
		if entries, err := flags.GetStringSlice("header"); err == nil {
			if cfg.Headers == nil {
				cfg.Headers = make(map[string]string, len(entries))
			}
			for _, entry := range entries {
				key, value, ok := splitHeader(entry)
				if !ok {
					return fmt.Errorf("header must be in key=value format: %s", entry)
				}
				cfg.Headers[key] = value
			}
		}
	}
	if flags.Changed("output") {
		if v, err := flags.GetString("output"); err == nil {
			cfg.Output = v
		}
	}
	if flags.Changed("no-save") {
		if v, err := flags.GetBool("no-save"); err == nil {
			cfg.NoSave = v
		}
	}
	if flags.Changed("detailed-output") {
		if v, err := flags.GetString("detailed-output"); err == nil {
			cfg.DetailedOutput = v
		}
	}
	if flags.Changed("html-output") {
		if v, err := flags.GetString("html-output"); err == nil {
			cfg.HTMLOutput = v
		}
	}
	if flags.Changed("history-file") {
		if v, err := flags.GetString("history-file"); err == nil {
			cfg.HistoryFile = v
		}
	}
	if flags.Changed("threshold") {
		if v, err := flags.GetStringSlice("threshold"); err == nil {
			cfg.Thresholds = append(cfg.Thresholds, v...)
		}
	}
	if flags.Changed("log-errors") {
		if v, err := flags.GetBool("log-errors"); err == nil {
			cfg.LogErrors = v
		}
	}
	if flags.Changed("quiet") {
		if v, err := flags.GetBool("quiet"); err == nil {
			cfg.Quiet = v
		}
	}
	return nil
}

// splitHeader parses a key=value header flag entry with a canonical key.
func splitHeader(entry string) (key, value string, ok bool) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", false
	}
	return http.CanonicalHeaderKey(strings.TrimSpace(parts[0])), strings.TrimSpace(parts[1]), true
}
