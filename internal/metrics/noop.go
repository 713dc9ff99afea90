package metrics

import "time"

// Noop discards all events.
type Noop struct{}

var _ Collector = Noop{}

func (Noop) RecordAttempt(string)                          {}
func (Noop) RecordInBandError(string)                      {}
func (Noop) RecordTransportError(string)                   {}
func (Noop) RecordOperation(string, string, time.Duration) {}
