package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/davetashner/gptservice/internal/llm"
)

// MaxBatchLimit is the largest page size the batch list endpoint accepts.
const MaxBatchLimit = 100

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Provider != "" && !slices.Contains(llm.Providers, cfg.Provider) {
		errs = append(errs, fmt.Sprintf("provider: invalid value %q (must be one of %s)",
			cfg.Provider, strings.Join(llm.Providers, ", ")))
	}

	if cfg.MaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("max_retries: must be non-negative, got %d", cfg.MaxRetries))
	}

	if cfg.BatchLimit < 0 || cfg.BatchLimit > MaxBatchLimit {
		errs = append(errs, fmt.Sprintf("batch_limit: must be between 1 and %d, got %d", MaxBatchLimit, cfg.BatchLimit))
	}

	if d, err := cfg.TimeoutDuration(); err != nil {
		errs = append(errs, err.Error())
	} else if d < 0 {
		errs = append(errs, fmt.Sprintf("timeout: must be non-negative, got %s", cfg.Timeout))
	}

	if strings.TrimSpace(cfg.Model) != cfg.Model {
		errs = append(errs, fmt.Sprintf("model: must not have surrounding whitespace, got %q", cfg.Model))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
