package record

import (
	"fmt"
	"time"

	"github.com/nimburion/docstore/pkg/observability/logger"
	"github.com/nimburion/docstore/pkg/observability/metrics"
)

// MetricsRecorder observes lifecycle mutations and page fetches. The
// Prometheus-backed metrics.Recorder is the default; construct it with the
// metrics.enabled config flag so a disabled deployment records nothing.
type MetricsRecorder interface {
	RecordMutation(collection, operation, outcome string, duration time.Duration)
	RecordPage(collection string, duration time.Duration)
}

// Option adjusts an engine at construction time.
type Option func(*Engine)

// WithMetricsRecorder replaces the default recorder.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(e *Engine) {
		e.metrics = rec
	}
}

// Engine runs the mutation lifecycle and keyset pagination against an
// injected Storage. It holds no mutable state of its own: every operation is
// a synchronous, reentrant call, so concurrent use needs no coordination
// beyond the store's own per-call atomicity.
type Engine struct {
	store   Storage
	log     logger.Logger
	metrics MetricsRecorder

	// now is swapped out in tests.
	now func() time.Time
}

// NewEngine wires an engine to its storage collaborator.
func NewEngine(store Storage, log logger.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("record: storage is required")
	}
	if log == nil {
		return nil, fmt.Errorf("record: logger is required")
	}
	e := &Engine{
		store:   store,
		log:     log,
		metrics: metrics.NewRecorder(true),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		return nil, fmt.Errorf("record: metrics recorder is required")
	}
	return e, nil
}
