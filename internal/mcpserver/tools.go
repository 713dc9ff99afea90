package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/gptservice/internal/output"
	"github.com/davetashner/gptservice/internal/service"
)

// TextInput is the input schema for the text_to_text tool.
type TextInput struct {
	Prompt       string `json:"prompt" jsonschema:"User prompt"`
	SystemPrompt string `json:"system_prompt,omitempty" jsonschema:"System instruction sent before the prompt"`
	MaxRetries   int    `json:"max_retries,omitempty" jsonschema:"Total attempts on provider-reported errors (default 3)"`
}

// ImageInput is the input schema for the image_to_text tool.
type ImageInput struct {
	Prompt       string   `json:"prompt" jsonschema:"User prompt describing what to do with the images"`
	ImagePaths   []string `json:"image_paths" jsonschema:"Local image file paths, sent in order"`
	SystemPrompt string   `json:"system_prompt,omitempty" jsonschema:"System instruction sent before the prompt"`
	MaxRetries   int      `json:"max_retries,omitempty" jsonschema:"Total attempts on provider-reported errors (default 3)"`
}

// UploadInput is the input schema for the upload_batch_file tool.
type UploadInput struct {
	Path string `json:"path" jsonschema:"Local path of the JSONL batch input file"`
}

// BatchIDInput identifies a batch job.
type BatchIDInput struct {
	BatchID string `json:"batch_id" jsonschema:"Batch job identifier"`
}

// FileIDInput identifies a provider file.
type FileIDInput struct {
	FileID string `json:"file_id" jsonschema:"Provider file identifier"`
}

// ListInput is the input schema for the get_all_batch_id tool.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of batch jobs to return (default 10)"`
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool { return &b }

// handlers binds the tool handlers to one service client.
type handlers struct {
	client *service.Client
	opts   Options
}

// registerTools adds all gptservice tools to the MCP server.
func registerTools(server *mcp.Server, h *handlers) {
	remoteRead := &mcp.ToolAnnotations{
		ReadOnlyHint:    true,
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(true),
	}
	remoteWrite := &mcp.ToolAnnotations{
		ReadOnlyHint:    false,
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(true),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "text_to_text",
		Description: "Send a prompt with an optional system instruction to the configured model and return its text reply. Provider-reported errors are retried; the reply is \"" + service.MaxRetriesReached + "\" when retries run out.",
		Annotations: remoteRead,
	}, h.textToText)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "image_to_text",
		Description: "Send a prompt plus one or more local images to the configured model and return its text reply.",
		Annotations: remoteRead,
	}, h.imageToText)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_batch_file",
		Description: "Upload a local JSONL file as batch input. Returns the provider file object.",
		Annotations: remoteWrite,
	}, h.uploadBatchFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_batch_file",
		Description: "Submit a batch job over an uploaded input file (chat completions endpoint, 24h window).",
		Annotations: remoteWrite,
	}, h.createBatchFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_batch_status",
		Description: "Return the current state of a batch job.",
		Annotations: remoteRead,
	}, h.checkBatchStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieval_batch_result",
		Description: "Return the raw JSONL content of a batch output file.",
		Annotations: remoteRead,
	}, h.retrievalBatchResult)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_batch_result",
		Description: "Request cancellation of a batch job.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    false,
			DestructiveHint: boolPtr(true),
			OpenWorldHint:   boolPtr(true),
		},
	}, h.cancelBatchResult)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_all_batch_id",
		Description: "List the most recent batch jobs.",
		Annotations: remoteRead,
	}, h.getAllBatchID)
}

func (h *handlers) maxRetries(requested int) int {
	if requested > 0 {
		return requested
	}
	if h.opts.MaxRetries > 0 {
		return h.opts.MaxRetries
	}
	return service.DefaultMaxRetries
}

func (h *handlers) textToText(ctx context.Context, _ *mcp.CallToolRequest, input TextInput) (*mcp.CallToolResult, any, error) {
	if input.Prompt == "" {
		return nil, nil, fmt.Errorf("%w: prompt must be provided", service.ErrInvalidArgument)
	}
	out, err := h.client.TextToText(ctx, input.Prompt, input.SystemPrompt, h.maxRetries(input.MaxRetries))
	if err != nil {
		return nil, nil, err
	}
	return textResult(out), nil, nil
}

func (h *handlers) imageToText(ctx context.Context, _ *mcp.CallToolRequest, input ImageInput) (*mcp.CallToolResult, any, error) {
	if len(input.ImagePaths) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one image path must be provided", service.ErrInvalidArgument)
	}
	paths, err := resolvePaths(input.ImagePaths)
	if err != nil {
		return nil, nil, err
	}
	out, err := h.client.ImageToText(ctx, input.Prompt, paths, input.SystemPrompt, h.maxRetries(input.MaxRetries))
	if err != nil {
		return nil, nil, err
	}
	return textResult(out), nil, nil
}

func (h *handlers) uploadBatchFile(ctx context.Context, _ *mcp.CallToolRequest, input UploadInput) (*mcp.CallToolResult, any, error) {
	path, err := ResolvePath(input.Path)
	if err != nil {
		return nil, nil, err
	}
	f, err := h.client.UploadBatchFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(func(j *output.JSONFormatter, buf *bytes.Buffer) error { return j.File(buf, f) })
}

func (h *handlers) createBatchFile(ctx context.Context, _ *mcp.CallToolRequest, input FileIDInput) (*mcp.CallToolResult, any, error) {
	if err := h.client.CreateBatchFile(ctx, input.FileID); err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Batch job submitted for input file %s.", input.FileID)), nil, nil
}

func (h *handlers) checkBatchStatus(ctx context.Context, _ *mcp.CallToolRequest, input BatchIDInput) (*mcp.CallToolResult, any, error) {
	b, err := h.client.CheckBatchStatus(ctx, input.BatchID)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(func(j *output.JSONFormatter, buf *bytes.Buffer) error { return j.Batch(buf, b) })
}

func (h *handlers) retrievalBatchResult(ctx context.Context, _ *mcp.CallToolRequest, input FileIDInput) (*mcp.CallToolResult, any, error) {
	content, err := h.client.RetrievalBatchResult(ctx, input.FileID)
	if err != nil {
		return nil, nil, err
	}
	return textResult(content), nil, nil
}

func (h *handlers) cancelBatchResult(ctx context.Context, _ *mcp.CallToolRequest, input BatchIDInput) (*mcp.CallToolResult, any, error) {
	if err := h.client.CancelBatchResult(ctx, input.BatchID); err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Cancellation requested for batch %s.", input.BatchID)), nil, nil
}

func (h *handlers) getAllBatchID(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, any, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = h.opts.BatchLimit
	}
	bs, err := h.client.GetAllBatchID(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(func(j *output.JSONFormatter, buf *bytes.Buffer) error { return j.Batches(buf, bs) })
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult renders through the pretty-printing JSON formatter.
func jsonResult(render func(*output.JSONFormatter, *bytes.Buffer) error) (*mcp.CallToolResult, any, error) {
	var buf bytes.Buffer
	if err := render(output.NewJSONFormatter(), &buf); err != nil {
		return nil, nil, fmt.Errorf("formatting failed: %w", err)
	}
	return textResult(buf.String()), nil, nil
}
