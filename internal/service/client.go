// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

// Package service implements the service client: text and image completions
// with a bounded retry on provider-reported errors, and a thin pass-through
// for batch file upload, submission, polling, retrieval and cancellation.
package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/davetashner/gptservice/internal/llm"
	"github.com/davetashner/gptservice/internal/metrics"
	"github.com/davetashner/gptservice/internal/redact"
	"github.com/davetashner/gptservice/internal/testable"
)

const (
	// DefaultBatchDescription is the metadata description attached to
	// submitted batch jobs.
	DefaultBatchDescription = "nightly eval job"

	// BatchEndpoint is the endpoint every batch request line targets.
	BatchEndpoint = "/v1/chat/completions"

	// BatchCompletionWindow is the completion window of submitted batch jobs.
	BatchCompletionWindow = "24h"

	// BatchPurpose is the purpose tag of uploaded batch input files.
	BatchPurpose = "batch"

	// DefaultBatchListLimit is the page size of GetAllBatchID.
	DefaultBatchListLimit = 10
)

// Options configures a Client. Model and APIKey are required; everything
// else has a usable default.
type Options struct {
	// Model is the provider model identifier, fixed for the client's lifetime.
	Model string

	// APIKey is the provider credential. Environment lookup is the caller's
	// job (see config.Resolve); the client never reads the environment.
	APIKey string

	// Provider selects the backend when Transport is nil. Empty means OpenAI.
	Provider string

	// BaseURL overrides the provider API host.
	BaseURL string

	// Timeout bounds a single HTTP request. Zero uses the backend default.
	Timeout time.Duration

	// BatchDescription overrides DefaultBatchDescription.
	BatchDescription string

	// Transport replaces the provider backend, typically with a test double.
	Transport llm.Transport

	// FS is used to read image and batch input files.
	FS testable.FileSystem

	// Logger receives operation logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives per-operation events. Defaults to metrics.Noop.
	Metrics metrics.Collector
}

// Client wraps one remote model behind the text, image and batch
// operations. It is immutable after New and holds no per-call state, so it
// is safe for concurrent use as long as its Transport is; both built-in
// backends and llm.MockTransport are.
type Client struct {
	model            string
	batchDescription string
	transport        llm.Transport
	fs               testable.FileSystem
	logger           *slog.Logger
	metrics          metrics.Collector
}

// New validates opts and builds a Client. A missing credential fails with
// ErrConfiguration before any transport is constructed, so no network
// activity can happen through an unvalidated client.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: API key must be provided or set in %s",
			ErrConfiguration, llm.APIKeyEnvVar(opts.Provider))
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: model identifier is required", ErrInvalidArgument)
	}
	redact.Register(opts.APIKey)

	transport := opts.Transport
	if transport == nil {
		tOpts := []llm.Option{llm.WithAPIKey(opts.APIKey)}
		if opts.BaseURL != "" {
			tOpts = append(tOpts, llm.WithBaseURL(opts.BaseURL))
		}
		if opts.Timeout > 0 {
			tOpts = append(tOpts, llm.WithTimeout(opts.Timeout))
		}
		var err error
		transport, err = llm.NewTransport(opts.Provider, tOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}

	c := &Client{
		model:            opts.Model,
		batchDescription: opts.BatchDescription,
		transport:        transport,
		fs:               opts.FS,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
	}
	if c.batchDescription == "" {
		c.batchDescription = DefaultBatchDescription
	}
	if c.fs == nil {
		c.fs = testable.DefaultFS
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = metrics.Noop{}
	}
	return c, nil
}

// Model returns the model identifier the client is bound to.
func (c *Client) Model() string {
	return c.model
}
