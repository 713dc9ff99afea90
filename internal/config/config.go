// Package config handles gptservice configuration: the project file
// (.gptservice.yaml or .gptservice.toml), the global config file, .env
// loading and credential resolution.
package config

import (
	"fmt"
	"time"
)

// Config represents the contents of a gptservice config file.
type Config struct {
	Provider         string `yaml:"provider,omitempty" toml:"provider,omitempty"`
	Model            string `yaml:"model,omitempty" toml:"model,omitempty"`
	BaseURL          string `yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	MaxRetries       int    `yaml:"max_retries,omitempty" toml:"max_retries,omitempty"`
	BatchLimit       int    `yaml:"batch_limit,omitempty" toml:"batch_limit,omitempty"`
	Timeout          string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	BatchDescription string `yaml:"batch_description,omitempty" toml:"batch_description,omitempty"`
}

const (
	// FileName is the expected YAML config file name in the working directory.
	FileName = ".gptservice.yaml"

	// TOMLFileName is read when FileName is absent.
	TOMLFileName = ".gptservice.toml"

	// DefaultModel is used when neither a flag nor a config file names one.
	DefaultModel = "o3-mini"
)

// TimeoutDuration parses Timeout. An empty value yields zero.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	return d, nil
}
