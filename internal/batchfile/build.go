// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

// Package batchfile builds and validates the JSONL input files consumed by
// the batch API: one chat-completion request per line.
package batchfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const (
	// Method is the HTTP method of every request line.
	Method = "POST"

	// URL is the endpoint every request line targets.
	URL = "/v1/chat/completions"

	// maxLineBytes bounds a single JSONL line when scanning.
	maxLineBytes = 16 << 20
)

// Request is one line of a batch input file.
type Request struct {
	CustomID string      `json:"custom_id"`
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Body     RequestBody `json:"body"`
}

// RequestBody is the chat-completion payload of a Request.
type RequestBody struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Message is a single chat message in a RequestBody.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewRequest builds a request line for prompt with a fresh custom_id. An
// empty systemPrompt is omitted.
func NewRequest(model, systemPrompt, prompt string) Request {
	var msgs []Message
	if systemPrompt != "" {
		msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt})
	return Request{
		CustomID: uuid.NewString(),
		Method:   Method,
		URL:      URL,
		Body:     RequestBody{Model: model, Messages: msgs},
	}
}

// Build writes one request line per prompt to w and returns the number of
// lines written.
func Build(w io.Writer, model, systemPrompt string, prompts []string) (int, error) {
	if model == "" {
		return 0, fmt.Errorf("batchfile: model is required")
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, p := range prompts {
		if err := enc.Encode(NewRequest(model, systemPrompt, p)); err != nil {
			return i, fmt.Errorf("batchfile: writing line %d: %w", i+1, err)
		}
	}
	return len(prompts), nil
}

// ReadPrompts reads one prompt per line from r. Blank lines are skipped.
func ReadPrompts(r io.Reader) ([]string, error) {
	var prompts []string
	sc := newScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			prompts = append(prompts, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("batchfile: reading prompts: %w", err)
	}
	return prompts, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}
