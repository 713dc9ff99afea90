// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

// Package redact strips credential values from strings before they appear
// in output, logs, or error messages.
package redact

import (
	"os"
	"strings"
	"sync"
)

// sensitiveEnvVars lists environment variable names whose values must never
// appear in output.
var sensitiveEnvVars = []string{
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"GPTSERVICE_API_KEY",
}

// minSecretLen guards against false-positive redaction of short values.
const minSecretLen = 4

var (
	mu            sync.RWMutex
	cachedSecrets []string
	registered    []string
	cacheOnce     sync.Once
)

func loadSecrets() {
	mu.Lock()
	defer mu.Unlock()
	for _, envVar := range sensitiveEnvVars {
		val := os.Getenv(envVar)
		if len(val) >= minSecretLen {
			cachedSecrets = append(cachedSecrets, val)
		}
	}
}

// Register adds a secret that did not come from a known environment
// variable, such as an API key passed on the command line or read from a
// config file. Short values are ignored.
func Register(secret string) {
	if len(secret) < minSecretLen {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	for _, s := range registered {
		if s == secret {
			return
		}
	}
	registered = append(registered, secret)
}

// resetCache resets the cached and registered secrets.
func resetCache() {
	mu.Lock()
	cachedSecrets = nil
	registered = nil
	mu.Unlock()
	cacheOnce = sync.Once{}
}

// ResetForTest resets the cached secrets so tests in other packages can
// verify redaction behavior after setting env vars with t.Setenv.
func ResetForTest() { resetCache() }

// String replaces any occurrence of a known secret with "[REDACTED]".
// Environment values are cached on first call.
func String(s string) string {
	cacheOnce.Do(loadSecrets)
	mu.RLock()
	defer mu.RUnlock()
	for _, secret := range cachedSecrets {
		s = strings.ReplaceAll(s, secret, "[REDACTED]")
	}
	for _, secret := range registered {
		s = strings.ReplaceAll(s, secret, "[REDACTED]")
	}
	return s
}

// Error returns the redacted message of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
