package config

import (
	"os"
	"strconv"
	"strings"
)

// envConfigLoader maps PREFIX_EVENTS__NAME=x to events.name = "x".
type envConfigLoader struct {
	prefix string
}

func (l *envConfigLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}

		key, value, _ := strings.Cut(env, "=")
		configKey := strings.ToLower(strings.TrimPrefix(key, l.prefix))
		configKey = strings.ReplaceAll(configKey, "__", ".")

		setNested(config, configKey, typed(value))
	}

	return config, nil
}

// typed converts value only when the conversion prints back to the same
// text, so GetString always returns what was set.
func typed(value string) any {
	if b, err := strconv.ParseBool(value); err == nil && strconv.FormatBool(b) == value {
		return b
	}
	if i, err := strconv.Atoi(value); err == nil && strconv.Itoa(i) == value {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == value {
		return f
	}
	return value
}

func setNested(m map[string]any, key string, value any) {
	keys := strings.Split(key, ".")
	last := len(keys) - 1

	current := m
	for i, k := range keys {
		if i == last {
			current[k] = value
			return
		}
		next, ok := current[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[k] = next
		}
		current = next
	}
}
