// Copyright 2026 The gptservice Authors
// SPDX-License-Identifier: MIT

package llm

import "errors"

// ErrEmptyResponse is returned when a transport reports neither a
// completion nor an error.
var ErrEmptyResponse = errors.New("llm: transport returned no completion")

// Outcome classifies the result of one completion round trip.
type Outcome int

const (
	// OutcomeOK means the provider answered without an in-band error.
	OutcomeOK Outcome = iota

	// OutcomeInBandError means the round trip succeeded but the response
	// carries a provider error. Callers may retry.
	OutcomeInBandError

	// OutcomeFatal means the round trip failed. Callers must not retry.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInBandError:
		return "inband_error"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify maps a transport result onto an Outcome.
func Classify(c *Completion, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFatal
	case c == nil:
		return OutcomeFatal
	case c.Error != nil:
		return OutcomeInBandError
	default:
		return OutcomeOK
	}
}
