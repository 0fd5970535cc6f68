package docserver

import (
	"sync/atomic"
	"time"
)

// Metrics collects in-memory server metrics using atomic counters.
type Metrics struct {
	startTime    time.Time
	requests     atomic.Int64
	serverErrors atomic.Int64
	clientErrors atomic.Int64
	reads        atomic.Int64
	writes       atomic.Int64
	rateLimited  atomic.Int64
}

// MetricsSnapshot is a point-in-time view of server metrics.
type MetricsSnapshot struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Requests       int64   `json:"requests"`
	ServerErrors   int64   `json:"server_errors"`
	ClientErrors   int64   `json:"client_errors"`
	DocumentReads  int64   `json:"document_reads"`
	DocumentWrites int64   `json:"document_writes"`
	RateLimited    int64   `json:"rate_limited"`
}

// NewMetrics creates a new Metrics instance with the current time as start.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) RecordRequest()     { m.requests.Add(1) }
func (m *Metrics) RecordError()       { m.serverErrors.Add(1) }
func (m *Metrics) RecordClientError() { m.clientErrors.Add(1) }
func (m *Metrics) RecordRead()        { m.reads.Add(1) }
func (m *Metrics) RecordWrite()       { m.writes.Add(1) }
func (m *Metrics) RecordRateLimited() { m.rateLimited.Add(1) }

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UptimeSeconds:  time.Since(m.startTime).Seconds(),
		Requests:       m.requests.Load(),
		ServerErrors:   m.serverErrors.Load(),
		ClientErrors:   m.clientErrors.Load(),
		DocumentReads:  m.reads.Load(),
		DocumentWrites: m.writes.Load(),
		RateLimited:    m.rateLimited.Load(),
	}
}
