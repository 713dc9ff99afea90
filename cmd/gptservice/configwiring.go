package main

import (
	"fmt"
	"log/slog"

	"github.com/davetashner/gptservice/internal/config"
	"github.com/davetashner/gptservice/internal/llm"
	"github.com/davetashner/gptservice/internal/metrics"
	"github.com/davetashner/gptservice/internal/service"
)

// cmdTransport replaces the provider backend when non-nil. Tests set it to
// an llm.MockTransport.
var cmdTransport llm.Transport

// flagConfig collects the client flags into a Config so they can be layered
// over the config files with config.Merge.
func flagConfig() *config.Config {
	return &config.Config{
		Provider:   flagProvider,
		Model:      flagModel,
		BaseURL:    flagBaseURL,
		MaxRetries: flagMaxRetries,
		Timeout:    flagTimeout,
	}
}

// loadSettings loads the dotenv file and merges global config, project
// config and flags, in increasing precedence. The result is validated and
// has a model and a retry budget.
func loadSettings() (*config.Config, error) {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return nil, exitError(ExitConfig, "loading %s: %v", flagEnvFile, err)
	}

	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return nil, exitError(ExitConfig, "loading global config: %v", err)
	}
	repoCfg, err := config.Load(".")
	if err != nil {
		return nil, exitError(ExitConfig, "loading config: %v", err)
	}

	cfg := config.Merge(config.Merge(globalCfg, repoCfg), flagConfig())
	if err := config.Validate(cfg); err != nil {
		return nil, exitError(ExitConfig, "%v", err)
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultModel
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = service.DefaultMaxRetries
	}
	return cfg, nil
}

// newClient builds a service client from the merged settings. collector
// may be nil.
func newClient(cfg *config.Config, collector metrics.Collector) (*service.Client, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, exitError(ExitConfig, "%v", err)
	}

	c, err := service.New(service.Options{
		Model:            cfg.Model,
		APIKey:           config.ResolveAPIKey(cfg.Provider, flagAPIKey),
		Provider:         cfg.Provider,
		BaseURL:          cfg.BaseURL,
		Timeout:          timeout,
		BatchDescription: cfg.BatchDescription,
		Transport:        cmdTransport,
		FS:               cmdFS,
		Logger:           slog.Default(),
		Metrics:          collector,
	})
	if err != nil {
		return nil, classify(fmt.Errorf("creating client: %w", err))
	}
	return c, nil
}

// loadClient is loadSettings followed by newClient without metrics.
func loadClient() (*service.Client, *config.Config, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	c, err := newClient(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}
