package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davetashner/gptservice/internal/llm"
	"github.com/davetashner/gptservice/internal/metrics"
)

// DefaultMaxRetries is the attempt budget callers use when none is
// configured.
const DefaultMaxRetries = 3

// MaxRetriesReached is returned, with a nil error, by TextToText and
// ImageToText when every attempt came back with a provider-reported error.
const MaxRetriesReached = "Max retries reached."

// RetryState tracks the attempt budget of one completion call.
type RetryState struct {
	AttemptsMade int
	MaxAttempts  int
}

// retryPhase is the state of the retry loop after an attempt.
type retryPhase int

const (
	phaseRetrying retryPhase = iota
	phaseSucceeded
	phaseExhausted
	phaseFailed
)

func (p retryPhase) String() string {
	switch p {
	case phaseRetrying:
		return "retrying"
	case phaseSucceeded:
		return "succeeded"
	case phaseExhausted:
		return "exhausted"
	case phaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// advance records one attempt with the given outcome. Only in-band errors
// consume the budget and allow another attempt; a fatal outcome ends the
// loop immediately regardless of the remaining budget.
func (s RetryState) advance(o llm.Outcome) (RetryState, retryPhase) {
	s.AttemptsMade++
	switch o {
	case llm.OutcomeOK:
		return s, phaseSucceeded
	case llm.OutcomeInBandError:
		if s.AttemptsMade >= s.MaxAttempts {
			return s, phaseExhausted
		}
		return s, phaseRetrying
	default:
		return s, phaseFailed
	}
}

// complete runs the retry loop for op. build is called once per attempt, so
// any request preparation (such as reading image files) is repeated on
// every retry. A zero budget makes no attempt and reports exhaustion; a
// negative one is rejected.
func (c *Client) complete(ctx context.Context, op string, maxRetries int, build func(context.Context) (llm.CompletionRequest, error)) (string, error) {
	if maxRetries < 0 {
		return "", fmt.Errorf("%s: %w: max retries must be non-negative, got %d", op, ErrInvalidArgument, maxRetries)
	}
	start := time.Now()
	log := c.logger.With("op", op, "request_id", uuid.NewString(), "model", c.model)
	if maxRetries == 0 {
		log.Warn("max retries reached", "max_attempts", 0)
		c.metrics.RecordOperation(op, metrics.StatusExhausted, time.Since(start))
		return MaxRetriesReached, nil
	}
	state := RetryState{MaxAttempts: maxRetries}

	for {
		req, err := build(ctx)
		if err != nil {
			log.Error("preparing request failed", "attempt", state.AttemptsMade+1, "error", err)
			c.metrics.RecordOperation(op, metrics.StatusError, time.Since(start))
			return "", fmt.Errorf("%s: %w", op, err)
		}

		c.metrics.RecordAttempt(op)
		comp, err := c.transport.CreateCompletion(ctx, req)

		var phase retryPhase
		state, phase = state.advance(llm.Classify(comp, err))

		switch phase {
		case phaseSucceeded:
			log.Debug("completion succeeded", "attempts", state.AttemptsMade)
			c.metrics.RecordOperation(op, metrics.StatusOK, time.Since(start))
			return strings.TrimSpace(comp.OutputText), nil

		case phaseRetrying:
			c.metrics.RecordInBandError(op)
			log.Warn("retrying after provider error",
				"attempt", state.AttemptsMade,
				"max_attempts", state.MaxAttempts,
				"error", fmt.Errorf("%w: %w", ErrProviderLogical, comp.Error))

		case phaseExhausted:
			c.metrics.RecordInBandError(op)
			log.Warn("max retries reached",
				"max_attempts", state.MaxAttempts,
				"error", fmt.Errorf("%w: %w", ErrProviderLogical, comp.Error))
			c.metrics.RecordOperation(op, metrics.StatusExhausted, time.Since(start))
			return MaxRetriesReached, nil

		default:
			if err == nil {
				err = llm.ErrEmptyResponse
			}
			c.metrics.RecordTransportError(op)
			log.Error("completion failed", "attempt", state.AttemptsMade, "error", err)
			c.metrics.RecordOperation(op, metrics.StatusError, time.Since(start))
			return "", fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
		}
	}
}
