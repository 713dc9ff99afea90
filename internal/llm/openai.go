// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// OpenAITransport implements Transport using the official OpenAI SDK. It
// talks to the Responses, Files and Batches endpoints. The underlying SDK
// client is safe for concurrent use.
type OpenAITransport struct {
	client     openai.Client
	maxRetries int
}

// Compile-time check that OpenAITransport satisfies the Transport interface.
var _ Transport = (*OpenAITransport)(nil)

// NewOpenAITransport creates a transport for the OpenAI API.
// It returns an error if no API key was provided.
func NewOpenAITransport(opts ...Option) (*OpenAITransport, error) {
	cfg := newTransportConfig(opts)
	if cfg.apiKey == "" {
		return nil, errors.New("llm: openai API key not provided")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &OpenAITransport{
		client:     openai.NewClient(clientOpts...),
		maxRetries: cfg.maxRetries,
	}, nil
}

// MaxRetries returns the configured SDK-level retry count.
func (t *OpenAITransport) MaxRetries() int {
	return t.maxRetries
}

// CreateCompletion sends the messages to the Responses API.
func (t *OpenAITransport) CreateCompletion(ctx context.Context, req CompletionRequest) (*Completion, error) {
	input := make(responses.ResponseInputParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		input = append(input, toOpenAIInputItem(m))
	}

	resp, err := t.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(req.Model),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: input},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: completion failed: %w", err)
	}

	c := &Completion{
		ID:         resp.ID,
		Model:      string(resp.Model),
		OutputText: resp.OutputText(),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
	if resp.Error.Code != "" || resp.Error.Message != "" {
		c.Error = &APIError{
			Code:    string(resp.Error.Code),
			Message: resp.Error.Message,
		}
	}
	return c, nil
}

func toOpenAIInputItem(m Message) responses.ResponseInputItemUnionParam {
	role := responses.EasyInputMessageRoleUser
	if m.Role == RoleSystem {
		role = responses.EasyInputMessageRoleSystem
	}

	if len(m.Parts) == 0 {
		return responses.ResponseInputItemParamOfMessage(m.Text, role)
	}

	content := make(responses.ResponseInputMessageContentListParam, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch p.Type {
		case ContentInputImage:
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{
					ImageURL: openai.String(p.ImageURL),
					Detail:   responses.ResponseInputImageDetailAuto,
				},
			})
		default:
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputText: &responses.ResponseInputTextParam{Text: p.Text},
			})
		}
	}
	return responses.ResponseInputItemParamOfMessage(content, role)
}

// UploadFile uploads r to the Files API.
func (t *OpenAITransport) UploadFile(ctx context.Context, name string, r io.Reader, purpose string) (*File, error) {
	f, err := t.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(r, name, "application/jsonl"),
		Purpose: openai.FilePurpose(purpose),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: file upload failed: %w", err)
	}
	return &File{
		ID:        f.ID,
		Filename:  f.Filename,
		Purpose:   string(f.Purpose),
		Bytes:     f.Bytes,
		CreatedAt: f.CreatedAt,
	}, nil
}

// FileContent downloads a stored file and returns it as text.
func (t *OpenAITransport) FileContent(ctx context.Context, fileID string) (string, error) {
	resp, err := t.client.Files.Content(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("openai: file content failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: reading file content: %w", err)
	}
	return string(data), nil
}

// CreateBatch submits a batch job.
func (t *OpenAITransport) CreateBatch(ctx context.Context, params BatchParams) (*Batch, error) {
	b, err := t.client.Batches.New(ctx, openai.BatchNewParams{
		InputFileID:      params.InputFileID,
		Endpoint:         openai.BatchNewParamsEndpoint(params.Endpoint),
		CompletionWindow: openai.BatchNewParamsCompletionWindow(params.CompletionWindow),
		Metadata:         shared.Metadata(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: batch create failed: %w", err)
	}
	return fromOpenAIBatch(b), nil
}

// RetrieveBatch fetches a batch job by id.
func (t *OpenAITransport) RetrieveBatch(ctx context.Context, batchID string) (*Batch, error) {
	b, err := t.client.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("openai: batch retrieve failed: %w", err)
	}
	return fromOpenAIBatch(b), nil
}

// ListBatches returns one page of batch jobs.
func (t *OpenAITransport) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	page, err := t.client.Batches.List(ctx, openai.BatchListParams{
		Limit: openai.Int(int64(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: batch list failed: %w", err)
	}

	out := make([]Batch, 0, len(page.Data))
	for i := range page.Data {
		out = append(out, *fromOpenAIBatch(&page.Data[i]))
	}
	return out, nil
}

// CancelBatch requests cancellation of a batch job.
func (t *OpenAITransport) CancelBatch(ctx context.Context, batchID string) (*Batch, error) {
	b, err := t.client.Batches.Cancel(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("openai: batch cancel failed: %w", err)
	}
	return fromOpenAIBatch(b), nil
}

func fromOpenAIBatch(b *openai.Batch) *Batch {
	var metadata map[string]string
	if len(b.Metadata) > 0 {
		metadata = make(map[string]string, len(b.Metadata))
		for k, v := range b.Metadata {
			metadata[k] = v
		}
	}
	return &Batch{
		ID:               b.ID,
		Status:           string(b.Status),
		Endpoint:         b.Endpoint,
		CompletionWindow: b.CompletionWindow,
		InputFileID:      b.InputFileID,
		OutputFileID:     b.OutputFileID,
		ErrorFileID:      b.ErrorFileID,
		RequestCounts: BatchRequestCounts{
			Total:     b.RequestCounts.Total,
			Completed: b.RequestCounts.Completed,
			Failed:    b.RequestCounts.Failed,
		},
		CreatedAt:   b.CreatedAt,
		CompletedAt: b.CompletedAt,
		Metadata:    metadata,
	}
}
