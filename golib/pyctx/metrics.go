package pyctx

import (
	"context"
	"sync/atomic"
)

// globalMetrics stays nil until InitializeMetrics, so programs that never
// ask for counters pay nothing on the abort path.
var globalMetrics *Metrics

// InitializeMetrics turns on process wide expiry counting and returns the
// shared counters. Call it during startup, before any Context is live; it
// is idempotent but not goroutine safe.
func InitializeMetrics() *Metrics {
	if globalMetrics == nil {
		globalMetrics = &Metrics{}
	}
	return globalMetrics
}

// Metrics counts aborted computations by cause.
type Metrics struct {
	deadlineExceeded uint64
	canceled         uint64
	callLimit        uint64
	other            uint64
}

// MetricsSnapshot is one consistent reading of Metrics.
type MetricsSnapshot struct {
	DeadlineExceeded uint64
	Canceled         uint64
	CallLimit        uint64
	Other            uint64
}

func (m *Metrics) hit(err error) {
	switch err {
	case context.DeadlineExceeded:
		atomic.AddUint64(&m.deadlineExceeded, 1)
	case context.Canceled:
		atomic.AddUint64(&m.canceled, 1)
	default:
		atomic.AddUint64(&m.other, 1)
	}
}

func (m *Metrics) hitCallLimit() {
	atomic.AddUint64(&m.callLimit, 1)
}

// Read returns the counts so far.
func (m *Metrics) Read() MetricsSnapshot {
	return MetricsSnapshot{
		DeadlineExceeded: atomic.LoadUint64(&m.deadlineExceeded),
		Canceled:         atomic.LoadUint64(&m.canceled),
		CallLimit:        atomic.LoadUint64(&m.callLimit),
		Other:            atomic.LoadUint64(&m.other),
	}
}
