package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRequest is a no-op.
func (n *NoopRecorder) IncRequest(method string, status int) {}

// IncProfileUpdated is a no-op.
func (n *NoopRecorder) IncProfileUpdated() {}

// IncSearchCreated is a no-op.
func (n *NoopRecorder) IncSearchCreated() {}

// IncProvisioned is a no-op.
func (n *NoopRecorder) IncProvisioned(outcome string) {}
