// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

// Package llm provides a narrow, provider-agnostic view of the remote
// language-model API: completions, file upload and download, and batch jobs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrUnsupported is returned by backends that do not implement an operation.
var ErrUnsupported = errors.New("llm: operation not supported by provider")

// Transport abstracts the remote API behind the operations the service
// client actually uses. Implementations must respect context cancellation
// and must be safe for concurrent use.
type Transport interface {
	// CreateCompletion sends one completion request. A non-nil error means the
	// round trip itself failed; an error reported by the provider inside a
	// successful response is carried in Completion.Error instead.
	CreateCompletion(ctx context.Context, req CompletionRequest) (*Completion, error)

	// UploadFile uploads the contents of r under the given name and purpose.
	UploadFile(ctx context.Context, name string, r io.Reader, purpose string) (*File, error)

	// FileContent returns the raw text content of a stored file.
	FileContent(ctx context.Context, fileID string) (string, error)

	// CreateBatch submits a batch job.
	CreateBatch(ctx context.Context, params BatchParams) (*Batch, error)

	// RetrieveBatch fetches the current state of a batch job.
	RetrieveBatch(ctx context.Context, batchID string) (*Batch, error)

	// ListBatches returns the most recent batch jobs, newest first.
	ListBatches(ctx context.Context, limit int) ([]Batch, error)

	// CancelBatch requests cancellation of a batch job.
	CancelBatch(ctx context.Context, batchID string) (*Batch, error)
}

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ContentType tags a part of a structured message.
type ContentType string

// Content part types.
const (
	ContentInputText  ContentType = "input_text"
	ContentInputImage ContentType = "input_image"
)

// ContentPart is one element of a structured message body.
type ContentPart struct {
	Type ContentType

	// Text is set for ContentInputText parts.
	Text string

	// ImageURL is set for ContentInputImage parts. It is usually a data URI.
	ImageURL string
}

// TextPart returns an input_text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: ContentInputText, Text: text}
}

// ImagePart returns an input_image content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: ContentInputImage, ImageURL: url}
}

// Message is a single role/content pair. When Parts is empty the message
// body is the plain Text.
type Message struct {
	Role  Role
	Text  string
	Parts []ContentPart
}

// CompletionRequest describes a single completion request.
type CompletionRequest struct {
	// Model is the provider model identifier.
	Model string

	Messages []Message
}

// Completion holds the result of a completion round trip.
type Completion struct {
	ID string

	// Model is the model that actually served the request.
	Model string

	// OutputText is the concatenated text output of the model.
	OutputText string

	// Error is non-nil when the provider reported an error inside an
	// otherwise successful response.
	Error *APIError

	Usage Usage
}

// Usage tracks input and output token counts for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// APIError is an error reported in-band by the provider.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// File is a provider-side stored file.
type File struct {
	ID        string `json:"id" yaml:"id"`
	Filename  string `json:"filename" yaml:"filename"`
	Purpose   string `json:"purpose" yaml:"purpose"`
	Bytes     int64  `json:"bytes" yaml:"bytes"`
	CreatedAt int64  `json:"created_at" yaml:"created_at"`
}

// BatchParams describes a batch job submission.
type BatchParams struct {
	InputFileID      string
	Endpoint         string
	CompletionWindow string
	Metadata         map[string]string
}

// Batch is the provider-side state of a batch job. The client never caches
// it; every query re-fetches from the provider.
type Batch struct {
	ID               string             `json:"id" yaml:"id"`
	Status           string             `json:"status" yaml:"status"`
	Endpoint         string             `json:"endpoint" yaml:"endpoint"`
	CompletionWindow string             `json:"completion_window" yaml:"completion_window"`
	InputFileID      string             `json:"input_file_id" yaml:"input_file_id"`
	OutputFileID     string             `json:"output_file_id,omitempty" yaml:"output_file_id,omitempty"`
	ErrorFileID      string             `json:"error_file_id,omitempty" yaml:"error_file_id,omitempty"`
	RequestCounts    BatchRequestCounts `json:"request_counts" yaml:"request_counts"`
	CreatedAt        int64              `json:"created_at" yaml:"created_at"`
	CompletedAt      int64              `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Metadata         map[string]string  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// BatchRequestCounts reports per-request progress of a batch job.
type BatchRequestCounts struct {
	Total     int64 `json:"total" yaml:"total"`
	Completed int64 `json:"completed" yaml:"completed"`
	Failed    int64 `json:"failed" yaml:"failed"`
}

// Terminal reports whether the batch has reached a final state.
func (b *Batch) Terminal() bool {
	switch b.Status {
	case "completed", "failed", "expired", "cancelled":
		return true
	default:
		return false
	}
}
