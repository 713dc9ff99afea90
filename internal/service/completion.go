package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"

	"github.com/davetashner/gptservice/internal/llm"
)

// imageDataURIPrefix is prepended to every base64-encoded image.
const imageDataURIPrefix = "data:image/jpeg;base64,"

// TextRequest is the input of TextToText.
type TextRequest struct {
	Prompt       string
	SystemPrompt string
}

// ImageRequest is the input of ImageToText. ImagePaths order is preserved in
// the request sent to the provider.
type ImageRequest struct {
	Prompt       string
	ImagePaths   []string
	SystemPrompt string
}

// TextToText sends a system message and a user message and returns the
// trimmed output text.
//
// A provider-reported error is retried up to maxRetries attempts in total;
// when the budget runs out the result is MaxRetriesReached with a nil error.
// maxRetries 0 makes no request at all, and a negative value fails with
// ErrInvalidArgument. A transport failure is
// returned immediately, wrapped with ErrTransport, and never retried.
func (c *Client) TextToText(ctx context.Context, prompt, systemPrompt string, maxRetries int) (string, error) {
	return c.Text(ctx, TextRequest{Prompt: prompt, SystemPrompt: systemPrompt}, maxRetries)
}

// Text is TextToText taking a TextRequest.
func (c *Client) Text(ctx context.Context, req TextRequest, maxRetries int) (string, error) {
	return c.complete(ctx, "text_to_text", maxRetries, func(context.Context) (llm.CompletionRequest, error) {
		return llm.CompletionRequest{
			Model: c.model,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Text: req.SystemPrompt},
				{Role: llm.RoleUser, Text: req.Prompt},
			},
		}, nil
	})
}

// ImageToText sends the prompt together with the images at imagePaths and
// returns the trimmed output text. Retry behavior matches TextToText.
//
// Every attempt re-reads and re-encodes every image; nothing is cached
// between retries. A missing image fails with ErrNotFound without being
// retried.
func (c *Client) ImageToText(ctx context.Context, prompt string, imagePaths []string, systemPrompt string, maxRetries int) (string, error) {
	return c.Image(ctx, ImageRequest{Prompt: prompt, ImagePaths: imagePaths, SystemPrompt: systemPrompt}, maxRetries)
}

// Image is ImageToText taking an ImageRequest.
func (c *Client) Image(ctx context.Context, req ImageRequest, maxRetries int) (string, error) {
	return c.complete(ctx, "image_to_text", maxRetries, func(ctx context.Context) (llm.CompletionRequest, error) {
		urls, err := c.encodeImages(ctx, req.ImagePaths)
		if err != nil {
			return llm.CompletionRequest{}, err
		}

		parts := make([]llm.ContentPart, 0, len(urls)+1)
		parts = append(parts, llm.TextPart(req.Prompt))
		for _, u := range urls {
			parts = append(parts, llm.ImagePart(u))
		}

		return llm.CompletionRequest{
			Model: c.model,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Text: req.SystemPrompt},
				{Role: llm.RoleUser, Parts: parts},
			},
		}, nil
	})
}

// encodeImages reads each path fully, in order, and returns base64 data
// URIs. The first failing path stops the attempt.
func (c *Client) encodeImages(ctx context.Context, paths []string) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := c.fs.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: image %s does not exist", ErrNotFound, p)
			}
			return nil, fmt.Errorf("reading image %s: %w", p, err)
		}
		urls = append(urls, imageDataURIPrefix+base64.StdEncoding.EncodeToString(data))
	}
	return urls, nil
}
