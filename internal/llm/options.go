// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

package llm

import "time"

const (
	// defaultMaxRetries is the number of SDK-level retries on transient HTTP
	// errors. Zero, because transport failures must surface to the caller on
	// the first occurrence.
	defaultMaxRetries = 0

	// defaultTimeout bounds a single HTTP request.
	defaultTimeout = 10 * time.Minute
)

// Option configures a Transport backend.
type Option func(*transportConfig)

type transportConfig struct {
	apiKey     string
	baseURL    string
	maxRetries int
	timeout    time.Duration
}

func newTransportConfig(opts []Option) transportConfig {
	cfg := transportConfig{
		maxRetries: defaultMaxRetries,
		timeout:    defaultTimeout,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// WithAPIKey sets the API key. Backends do not read the environment; the
// caller resolves the credential.
func WithAPIKey(key string) Option {
	return func(c *transportConfig) {
		c.apiKey = key
	}
}

// WithBaseURL points the backend at a different API host, e.g. a proxy or a
// test server.
func WithBaseURL(url string) Option {
	return func(c *transportConfig) {
		c.baseURL = url
	}
}

// WithMaxRetries sets the SDK-level retry count for transient HTTP errors.
func WithMaxRetries(n int) Option {
	return func(c *transportConfig) {
		c.maxRetries = n
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *transportConfig) {
		c.timeout = d
	}
}
