package main

import (
	"errors"
	"fmt"

	"github.com/davetashner/gptservice/internal/llm"
	"github.com/davetashner/gptservice/internal/service"
)

// Exit codes for the gptservice CLI.
const (
	ExitOK               = 0 // Success.
	ExitError            = 1 // Transport or unexpected failure.
	ExitInvalidArgs      = 2 // Invalid arguments, missing file, or invalid batch input.
	ExitConfig           = 3 // Missing credential or bad configuration.
	ExitRetriesExhausted = 4 // Every attempt returned a provider-reported error.
	ExitUnsupported      = 5 // Operation not offered by the selected provider.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
	err  error
}

func (e *exitCodeError) Error() string { return e.msg }

// Unwrap returns the underlying error, if any.
func (e *exitCodeError) Unwrap() error { return e.err }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitRetriesExhausted:
			msg = "gptservice: " + service.MaxRetriesReached
		case ExitConfig:
			msg = "gptservice: configuration error"
		default:
			msg = "gptservice: error"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}

// classify maps a service error to an exitCodeError. nil stays nil.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ece *exitCodeError
	if errors.As(err, &ece) {
		return err
	}

	code := ExitError
	switch {
	case errors.Is(err, service.ErrConfiguration):
		code = ExitConfig
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrNotFound):
		code = ExitInvalidArgs
	case errors.Is(err, llm.ErrUnsupported):
		code = ExitUnsupported
	}
	return &exitCodeError{code: code, msg: err.Error(), err: err}
}
