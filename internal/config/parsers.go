package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// lookupSetting returns the first value present under any of the given keys.
func lookupSetting(settings map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if value, ok := settings[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}

func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported integer value %v", value)
	}
}

func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported numeric value %v", value)
	}
}

func asBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("invalid boolean %q", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("unsupported boolean value %v", value)
	}
}

// asDuration parses strings with time.ParseDuration; bare numbers are
// treated as seconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported duration value %v", value)
	}
}

func asStringMap(value interface{}) (map[string]string, error) {
	entries, err := toStringKeyMap(value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for key, entry := range entries {
		out[key] = asString(entry)
	}
	return out, nil
}

func asStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			out = append(out, asString(entry))
		}
		return out, nil
	case string:
		return []string{strings.TrimSpace(v)}, nil
	default:
		return nil, fmt.Errorf("unsupported list value %v", value)
	}
}

// toStringKeyMap normalizes the map flavors different config decoders
// produce.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, entry := range v {
			out[fmt.Sprintf("%v", key)] = entry
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a map section, got %T", value)
	}
}
