package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// defaultAnthropicMaxTokens is the maximum output tokens per request. The
// Messages API requires an explicit value.
const defaultAnthropicMaxTokens = 4096

// AnthropicTransport implements the completion half of Transport using the
// official Anthropic SDK. File and batch operations return ErrUnsupported:
// Anthropic batches take inline requests, not uploaded input files.
type AnthropicTransport struct {
	client     anthropic.Client
	maxRetries int
}

// Compile-time check that AnthropicTransport satisfies the Transport interface.
var _ Transport = (*AnthropicTransport)(nil)

// NewAnthropicTransport creates a transport for the Anthropic Messages API.
// It returns an error if no API key was provided.
func NewAnthropicTransport(opts ...Option) (*AnthropicTransport, error) {
	cfg := newTransportConfig(opts)
	if cfg.apiKey == "" {
		return nil, errors.New("llm: anthropic API key not provided")
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

	return &AnthropicTransport{
		client:     anthropic.NewClient(clientOpts...),
		maxRetries: cfg.maxRetries,
	}, nil
}

// MaxRetries returns the configured SDK-level retry count.
func (t *AnthropicTransport) MaxRetries() int {
	return t.maxRetries
}

// CreateCompletion sends the messages to the Messages API. System messages
// become the system prompt; image parts must be base64 data URIs.
func (t *AnthropicTransport) CreateCompletion(ctx context.Context, req CompletionRequest) (*Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: defaultAnthropicMaxTokens,
	}

	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if m.Text != "" {
				params.System = append(params.System, anthropic.TextBlockParam{Text: m.Text})
			}
			continue
		}
		blocks, err := toAnthropicBlocks(m)
		if err != nil {
			return nil, err
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
	}

	msg, err := t.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: completion failed: %w", err)
	}

	// Extract text from content blocks.
	var content string
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += variant.Text
		}
	}

	return &Completion{
		ID:         msg.ID,
		Model:      string(msg.Model),
		OutputText: content,
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

func toAnthropicBlocks(m Message) ([]anthropic.ContentBlockParamUnion, error) {
	if len(m.Parts) == 0 {
		return []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Text)}, nil
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch p.Type {
		case ContentInputImage:
			mediaType, data, err := splitDataURI(p.ImageURL)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
		default:
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
		}
	}
	return blocks, nil
}

// splitDataURI splits "data:<media>;base64,<data>" into its media type and
// payload.
func splitDataURI(uri string) (mediaType, data string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("anthropic: image must be a data URI, got %.32q", uri)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", errors.New("anthropic: malformed data URI")
	}
	mediaType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", errors.New("anthropic: data URI is not base64 encoded")
	}
	return mediaType, payload, nil
}

// UploadFile is not supported.
func (t *AnthropicTransport) UploadFile(context.Context, string, io.Reader, string) (*File, error) {
	return nil, fmt.Errorf("anthropic: upload file: %w", ErrUnsupported)
}

// FileContent is not supported.
func (t *AnthropicTransport) FileContent(context.Context, string) (string, error) {
	return "", fmt.Errorf("anthropic: file content: %w", ErrUnsupported)
}

// CreateBatch is not supported.
func (t *AnthropicTransport) CreateBatch(context.Context, BatchParams) (*Batch, error) {
	return nil, fmt.Errorf("anthropic: create batch: %w", ErrUnsupported)
}

// RetrieveBatch is not supported.
func (t *AnthropicTransport) RetrieveBatch(context.Context, string) (*Batch, error) {
	return nil, fmt.Errorf("anthropic: retrieve batch: %w", ErrUnsupported)
}

// ListBatches is not supported.
func (t *AnthropicTransport) ListBatches(context.Context, int) ([]Batch, error) {
	return nil, fmt.Errorf("anthropic: list batches: %w", ErrUnsupported)
}

// CancelBatch is not supported.
func (t *AnthropicTransport) CancelBatch(context.Context, string) (*Batch, error) {
	return nil, fmt.Errorf("anthropic: cancel batch: %w", ErrUnsupported)
}
