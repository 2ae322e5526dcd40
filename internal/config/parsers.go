package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Settings read by viper arrive as whatever the file decoder produced: JSON
// numbers are float64, YAML integers are int, lists are []interface{} and
// nested sections are maps. The as* helpers normalise them with spf13/cast
// after trimming string input.

// lookupSetting returns the first candidate key present in settings, trying
// each key as given and lowercased.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		for _, k := range []string{key, strings.ToLower(key)} {
			if val, ok := settings[k]; ok {
				return val, true
			}
		}
	}
	return nil, false
}

func trimmed(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return value
}

func asString(value interface{}) (string, error) {
	return cast.ToStringE(value)
}

func asInt(value interface{}) (int, error) {
	return cast.ToIntE(trimmed(value))
}

func asFloat64(value interface{}) (float64, error) {
	return cast.ToFloat64E(trimmed(value))
}

func asBool(value interface{}) (bool, error) {
	v := trimmed(value)
	if v == "" {
		return false, nil
	}
	return cast.ToBoolE(v)
}

// asDuration accepts Go duration strings. Bare numbers count as seconds, so
// `lock_timeout: 10` waits ten seconds rather than ten nanoseconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := trimmed(value).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		return time.ParseDuration(v)
	default:
		secs, err := cast.ToInt64E(v)
		if err != nil {
			return 0, fmt.Errorf("unsupported duration type %T", value)
		}
		return time.Duration(secs) * time.Second, nil
	}
}

// asStringSlice keeps a lone string whole; thresholds contain spaces.
func asStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	default:
		return cast.ToStringSliceE(v)
	}
}

// toStringKeyMap converts a nested section to a map with lowercase keys.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	raw, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	result := make(map[string]interface{}, len(raw))
	for key, val := range raw {
		result[strings.ToLower(strings.TrimSpace(key))] = val
	}
	return result, nil
}
