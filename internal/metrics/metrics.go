package metrics

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics table.
type MetricID int

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricExternalLoginSuccess
	MetricLogout
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshReplayDetected
	MetricVerificationSent
	MetricVerificationSuccess
	MetricVerificationFailure
	MetricAuthenticateSuccess
	MetricAuthenticateFailure

	MetricIDCount
)

// Config controls metrics collection. Disabled metrics are no-ops.
type Config struct {
	Enabled bool
}

// Metrics is a fixed table of atomic counters. All methods are safe for
// concurrent use; a nil *Metrics is a valid no-op receiver.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
