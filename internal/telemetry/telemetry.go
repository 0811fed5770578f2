// Package telemetry collects anonymous usage records on a bounded queue
// serviced by a single background worker. Recording never blocks a
// caller: when the queue is full the record is dropped and the drop is
// logged.
package telemetry

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mooselabs/unitymcp/internal/clog"
)

// DisableEnvVar turns telemetry off entirely when set to a true value.
const DisableEnvVar = "UNITYMCP_DISABLE_TELEMETRY"

// RecordType classifies a telemetry record.
type RecordType string

// Record types.
const (
	RecordToolExecution RecordType = "tool_execution"
	RecordTestRun       RecordType = "test_run"
	RecordInstallRepair RecordType = "install_repair"
	RecordStartup       RecordType = "startup"
)

// Record is one telemetry event.
type Record struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Type      RecordType     `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink receives records from the worker. Send errors are logged and the
// record is abandoned; telemetry is best-effort by definition.
type Sink interface {
	Send(rec Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rec Record) error

// Send calls f.
func (f SinkFunc) Send(rec Record) error { return f(rec) }

// defaultQueueSize bounds the record queue.
const defaultQueueSize = 256

// Collector queues records for background delivery.
type Collector struct {
	sink      Sink
	sessionID string
	enabled   bool

	mu     sync.Mutex
	closed bool
	queue  chan Record

	done chan struct{}
}

// Option configures a Collector.
type Option func(*Collector)

// WithQueueSize overrides the default queue bound.
func WithQueueSize(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.queue = make(chan Record, n)
		}
	}
}

// New creates a collector delivering to sink and starts its worker.
// The collector is disabled, and records are discarded silently, when the
// disable environment variable is set.
func New(sink Sink, opts ...Option) *Collector {
	c := &Collector{
		sink:      sink,
		sessionID: uuid.NewString(),
		enabled:   !disabledByEnv(),
		queue:     make(chan Record, defaultQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.worker()
	return c
}

// disabledByEnv reports whether the environment opts out of telemetry.
func disabledByEnv() bool {
	v := os.Getenv(DisableEnvVar)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err != nil || b
}

// Enabled reports whether records are being collected.
func (c *Collector) Enabled() bool {
	return c.enabled
}

// SessionID returns the identifier shared by all records from this
// collector.
func (c *Collector) SessionID() string {
	return c.sessionID
}

// Record queues one event. It never blocks: a full queue drops the
// record with a debug log line. Records arriving after Close are dropped;
// handlers may still be in flight while the process shuts down.
func (c *Collector) Record(typ RecordType, data map[string]any) {
	if !c.enabled {
		return
	}
	rec := Record{
		ID:        uuid.NewString(),
		SessionID: c.sessionID,
		Type:      typ,
		Timestamp: time.Now(),
		Data:      data,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		clog.Debug("telemetry collector closed; dropping %s record", typ)
		return
	}
	select {
	case c.queue <- rec:
	default:
		clog.Debug("telemetry queue full; dropping %s record", typ)
	}
}

// Close stops the worker after draining queued records.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()
	<-c.done
}

// worker delivers queued records until the queue is closed.
func (c *Collector) worker() {
	defer close(c.done)
	for rec := range c.queue {
		if err := c.sink.Send(rec); err != nil {
			clog.Debug("telemetry send failed: %v", err)
		}
	}
}
