// Package metricspkg records ledger operation metrics.
package metricspkg

import "time"

// Outcome labels for recorded operations.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder defines the interface for collecting ledger operation metrics.
type Recorder interface {
	RecordOperation(operation, outcome string, duration time.Duration)
}

// NoOpRecorder is a no-op implementation of Recorder.
type NoOpRecorder struct{}

// RecordOperation does nothing.
func (NoOpRecorder) RecordOperation(operation, outcome string, duration time.Duration) {}
