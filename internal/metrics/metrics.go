// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Provisioning outcomes recorded by IncProvisioned.
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP surface
	IncRequest(method string, status int)

	// Domain events
	IncProfileUpdated()
	IncSearchCreated()
	IncProvisioned(outcome string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
