package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GetValue retrieves a value from a Config by key. Unset keys are reported
// as not found.
func GetValue(cfg *Config, key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	m, err := configToMap(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	val, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("key %q not set", key)
	}
	return val, nil
}

// SetValue sets a value in a raw YAML map. The value is coerced to bool,
// int, or string.
func SetValue(data map[string]any, key string, rawValue string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data[key] = coerceValue(rawValue)
	return nil
}

// ValidateKey checks that key names a Config field. Config is flat, so
// dotted paths are rejected.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	keys := Keys()
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	if strings.Contains(key, ".") {
		return fmt.Errorf("key %q: config keys are not nested", key)
	}
	return fmt.Errorf("unknown key %q; valid keys: %s", key, strings.Join(keys, ", "))
}

// Keys returns the sorted config keys, taken from the yaml struct tags.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys
}

// ToMap returns the set fields of cfg keyed by their config names.
func ToMap(cfg *Config) (map[string]any, error) {
	return configToMap(cfg)
}

// configToMap marshals a Config to a map via YAML round-trip.
func configToMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

// coerceValue parses a string into bool, int, or keeps it as string.
func coerceValue(s string) any {
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}
