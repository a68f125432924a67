package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrHelpRequested signals that help was displayed and the caller should
// exit without running a benchmark.
var ErrHelpRequested = errors.New("help requested")

// Load builds the run configuration from command-line arguments and the
// optional config file. Precedence, lowest to highest: defaults, config
// file, explicit flags.
func Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	cmd.SetArgs(args)
	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	flags := cmd.Flags()

	if helpFlag := flags.Lookup("help"); helpFlag != nil {
		if requested, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && requested {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("read config flag: %w", err)
	}
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	settings := map[string]interface{}{}
	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
		settings = v.AllSettings()
	}

	cfg := &Config{
		Requests:   DefaultRequests,
		Workers:    DefaultWorkers,
		Timeout:    DefaultTimeout,
		Headers:    map[string]string{},
		Payload:    DefaultPayload(),
		Tracing:    TracingConfig{SampleRate: 1.0},
		ConfigFile: configPath,
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, flags); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyConfigSettings maps config file keys onto the configuration. Keys
// accept a few aliases so files written for similar tools keep working.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if value, ok := lookupSetting(settings, "requests", "request_count", "total_requests"); ok {
		if n, err := asInt(value); err == nil {
			cfg.Requests = n
		}
	}
	if value, ok := lookupSetting(settings, "workers", "worker_count", "concurrency"); ok {
		if n, err := asInt(value); err == nil {
			cfg.Workers = n
		}
	}
	if value, ok := lookupSetting(settings, "timeout", "request_timeout"); ok {
		if d, err := asDuration(value); err == nil {
			cfg.Timeout = d
		}
	}
	if value, ok := lookupSetting(settings, "rate", "rate_per_second", "rps"); ok {
		if n, err := asInt(value); err == nil {
			cfg.Rate = n
		}
	}
	if value, ok := lookupSetting(settings, "docker_url", "dockerurl"); ok {
		cfg.DockerURL = asString(value)
	}
	if value, ok := lookupSetting(settings, "zip_url", "zipurl"); ok {
		cfg.ZipURL = asString(value)
	}
	if value, ok := lookupSetting(settings, "docker_only", "dockeronly"); ok {
		if b, err := asBool(value); err == nil {
			cfg.DockerOnly = b
		}
	}
	if value, ok := lookupSetting(settings, "zip_only", "ziponly"); ok {
		if b, err := asBool(value); err == nil {
			cfg.ZipOnly = b
		}
	}
	if value, ok := lookupSetting(settings, "headers"); ok {
		if headers, err := asStringMap(value); err == nil {
			for k, v := range headers {
				cfg.Headers[k] = v
			}
		}
	}
	if value, ok := lookupSetting(settings, "output", "output_file"); ok {
		cfg.Output = asString(value)
	}
	if value, ok := lookupSetting(settings, "no_save", "nosave"); ok {
		if b, err := asBool(value); err == nil {
			cfg.NoSave = b
		}
	}
	if value, ok := lookupSetting(settings, "detailed_output", "detailedoutput"); ok {
		cfg.DetailedOutput = asString(value)
	}
	if value, ok := lookupSetting(settings, "html_output", "htmloutput"); ok {
		cfg.HTMLOutput = asString(value)
	}
	if value, ok := lookupSetting(settings, "history_file", "historyfile"); ok {
		cfg.HistoryFile = asString(value)
	}
	if value, ok := lookupSetting(settings, "thresholds", "threshold"); ok {
		if rules, err := asStringSlice(value); err == nil {
			cfg.Thresholds = append(cfg.Thresholds, rules...)
		}
	}
	if value, ok := lookupSetting(settings, "log_errors", "logerrors"); ok {
		if b, err := asBool(value); err == nil {
			cfg.LogErrors = b
		}
	}
	if value, ok := lookupSetting(settings, "quiet"); ok {
		if b, err := asBool(value); err == nil {
			cfg.Quiet = b
		}
	}
	if value, ok := lookupSetting(settings, "payload"); ok {
		section, err := toStringKeyMap(value)
		if err != nil {
			return fmt.Errorf("payload section: %w", err)
		}
		applyPayloadSettings(cfg, section)
	}
	if value, ok := lookupSetting(settings, "tracing"); ok {
		section, err := toStringKeyMap(value)
		if err != nil {
			return fmt.Errorf("tracing section: %w", err)
		}
		applyTracingSettings(cfg, section)
	}
	return nil
}

func applyPayloadSettings(cfg *Config, settings map[string]interface{}) {
	if value, ok := lookupSetting(settings, "name"); ok {
		cfg.Payload.Name = asString(value)
	}
	if value, ok := lookupSetting(settings, "email"); ok {
		cfg.Payload.Email = asString(value)
	}
	if value, ok := lookupSetting(settings, "age"); ok {
		if n, err := asInt(value); err == nil {
			cfg.Payload.Age = n
		}
	}
	if value, ok := lookupSetting(settings, "interests"); ok {
		if interests, err := asStringSlice(value); err == nil {
			cfg.Payload.Interests = interests
		}
	}
}

func applyTracingSettings(cfg *Config, settings map[string]interface{}) {
	if value, ok := lookupSetting(settings, "endpoint"); ok {
		cfg.Tracing.Endpoint = asString(value)
	}
	if value, ok := lookupSetting(settings, "protocol"); ok {
		cfg.Tracing.Protocol = asString(value)
	}
	if value, ok := lookupSetting(settings, "service_name", "servicename"); ok {
		cfg.Tracing.ServiceName = asString(value)
	}
	if value, ok := lookupSetting(settings, "sample_rate", "samplerate"); ok {
		if rate, err := asFloat64(value); err == nil {
			cfg.Tracing.SampleRate = rate
		}
	}
	if value, ok := lookupSetting(settings, "insecure"); ok {
		if b, err := asBool(value); err == nil {
			cfg.Tracing.Insecure = b
		}
	}
	if value, ok := lookupSetting(settings, "no_propagate", "nopropagate"); ok {
		if b, err := asBool(value); err == nil {
			cfg.Tracing.NoPropagate = b
		}
	}
}
