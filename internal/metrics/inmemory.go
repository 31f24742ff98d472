package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Requests            uint64
	RequestsClientError uint64
	RequestsServerError uint64
	ProfilesUpdated     uint64
	SearchesCreated     uint64
	ProvisionCreated    uint64
	ProvisionSkipped    uint64
	ProvisionFailed     uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	requests            uint64
	requestsClientError uint64
	requestsServerError uint64
	profilesUpdated     uint64
	searchesCreated     uint64
	provisionCreated    uint64
	provisionSkipped    uint64
	provisionFailed     uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Requests:            atomic.LoadUint64(&m.requests),
		RequestsClientError: atomic.LoadUint64(&m.requestsClientError),
		RequestsServerError: atomic.LoadUint64(&m.requestsServerError),
		ProfilesUpdated:     atomic.LoadUint64(&m.profilesUpdated),
		SearchesCreated:     atomic.LoadUint64(&m.searchesCreated),
		ProvisionCreated:    atomic.LoadUint64(&m.provisionCreated),
		ProvisionSkipped:    atomic.LoadUint64(&m.provisionSkipped),
		ProvisionFailed:     atomic.LoadUint64(&m.provisionFailed),
	}
}

// IncRequest counts one handled request by status class.
func (m *InMemoryRecorder) IncRequest(method string, status int) {
	atomic.AddUint64(&m.requests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&m.requestsServerError, 1)
	case status >= 400:
		atomic.AddUint64(&m.requestsClientError, 1)
	}
}

// IncProfileUpdated counts one successful profile write.
func (m *InMemoryRecorder) IncProfileUpdated() {
	atomic.AddUint64(&m.profilesUpdated, 1)
}

// IncSearchCreated counts one stored search entry.
func (m *InMemoryRecorder) IncSearchCreated() {
	atomic.AddUint64(&m.searchesCreated, 1)
}

// IncProvisioned counts one provisioning attempt by outcome.
func (m *InMemoryRecorder) IncProvisioned(outcome string) {
	switch outcome {
	case OutcomeCreated:
		atomic.AddUint64(&m.provisionCreated, 1)
	case OutcomeSkipped:
		atomic.AddUint64(&m.provisionSkipped, 1)
	case OutcomeFailed:
		atomic.AddUint64(&m.provisionFailed, 1)
	}
}
