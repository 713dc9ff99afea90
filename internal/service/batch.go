package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/davetashner/gptservice/internal/llm"
	"github.com/davetashner/gptservice/internal/metrics"
)

// UploadBatchFile uploads the JSONL file at path with purpose "batch" and
// returns the provider's file object. A missing file fails with ErrNotFound
// before any network call.
func (c *Client) UploadBatchFile(ctx context.Context, path string) (*llm.File, error) {
	const op = "upload_batch_file"

	if _, err := c.fs.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w: file %s does not exist", op, ErrNotFound, path)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: opening %s: %w", op, path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	file, err := c.transport.UploadFile(ctx, filepath.Base(path), f, BatchPurpose)
	if err != nil {
		return nil, c.roundTripFailed(op, start, "error uploading batch file", err)
	}
	c.logger.Debug("uploaded batch file", "op", op, "file_id", file.ID, "bytes", file.Bytes)
	c.metrics.RecordOperation(op, metrics.StatusOK, time.Since(start))
	return file, nil
}

// CreateBatchFile submits a batch job over a previously uploaded input file,
// targeting BatchEndpoint with a 24h completion window.
func (c *Client) CreateBatchFile(ctx context.Context, batchFileID string) error {
	const op = "create_batch_file"

	if batchFileID == "" {
		return fmt.Errorf("%s: %w: batch file ID must be provided", op, ErrInvalidArgument)
	}

	start := time.Now()
	b, err := c.transport.CreateBatch(ctx, llm.BatchParams{
		InputFileID:      batchFileID,
		Endpoint:         BatchEndpoint,
		CompletionWindow: BatchCompletionWindow,
		Metadata:         map[string]string{"description": c.batchDescription},
	})
	if err != nil {
		return c.roundTripFailed(op, start, "error creating batch", err)
	}
	c.logger.Debug("created batch", "op", op, "batch_id", b.ID, "status", b.Status)
	c.metrics.RecordOperation(op, metrics.StatusOK, time.Since(start))
	return nil
}

// CheckBatchStatus returns the current provider-side state of a batch job.
func (c *Client) CheckBatchStatus(ctx context.Context, batchFileID string) (*llm.Batch, error) {
	const op = "check_batch_status"

	if batchFileID == "" {
		return nil, fmt.Errorf("%s: %w: batch file ID must be provided", op, ErrInvalidArgument)
	}

	start := time.Now()
	b, err := c.transport.RetrieveBatch(ctx, batchFileID)
	if err != nil {
		return nil, c.roundTripFailed(op, start, "error checking batch status", err)
	}
	c.metrics.RecordOperation(op, metrics.StatusOK, time.Since(start))
	return b, nil
}

// RetrievalBatchResult returns the raw text of a batch output file.
func (c *Client) RetrievalBatchResult(ctx context.Context, outputFileID string) (string, error) {
	const op = "retrieval_batch_result"

	if outputFileID == "" {
		return "", fmt.Errorf("%s: %w: output file ID must be provided", op, ErrInvalidArgument)
	}

	start := time.Now()
	content, err := c.transport.FileContent(ctx, outputFileID)
	if err != nil {
		return "", c.roundTripFailed(op, start, "error retrieving batch result", err)
	}
	c.metrics.RecordOperation(op, metrics.StatusOK, time.Since(start))
	return content, nil
}

// CancelBatchResult requests cancellation of a batch job.
func (c *Client) CancelBatchResult(ctx context.Context, batchFileID string) error {
	const op = "cancel_batch_result"

	if batchFileID == "" {
		return fmt.Errorf("%s: %w: batch file ID must be provided", op, ErrInvalidArgument)
	}

	start := time.Now()
	b, err := c.transport.CancelBatch(ctx, batchFileID)
	if err != nil {
		return c.roundTripFailed(op, start, "error cancelling batch", err)
	}
	c.logger.Debug("cancel requested", "op", op, "batch_id", b.ID, "status", b.Status)
	c.metrics.RecordOperation(op, metrics.StatusOK, time.Since(start))
	return nil
}

// GetAllBatchID lists the most recent batch jobs. A non-positive limit uses
// DefaultBatchListLimit.
func (c *Client) GetAllBatchID(ctx context.Context, limit int) ([]llm.Batch, error) {
	const op = "get_all_batch_id"

	if limit <= 0 {
		limit = DefaultBatchListLimit
	}

	start := time.Now()
	batches, err := c.transport.ListBatches(ctx, limit)
	if err != nil {
		return nil, c.roundTripFailed(op, start, "error listing batches", err)
	}
	c.metrics.RecordOperation(op, metrics.StatusOK, time.Since(start))
	return batches, nil
}

// roundTripFailed logs and counts a failed batch round trip and returns it
// wrapped with ErrTransport.
func (c *Client) roundTripFailed(op string, start time.Time, msg string, err error) error {
	c.logger.Error(msg, "op", op, "error", err)
	c.metrics.RecordTransportError(op)
	c.metrics.RecordOperation(op, metrics.StatusError, time.Since(start))
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
