package metrics

import "time"

// Recorder routes operation observations to the package collectors. A
// disabled recorder drops every observation, so callers never branch on
// the metrics flag themselves.
type Recorder struct {
	enabled bool
}

// NewRecorder builds a recorder honoring the metrics.enabled flag.
func NewRecorder(enabled bool) *Recorder {
	return &Recorder{enabled: enabled}
}

// RecordMutation records one lifecycle mutation when enabled.
func (r *Recorder) RecordMutation(collection, operation, outcome string, duration time.Duration) {
	if !r.enabled {
		return
	}
	RecordMutation(collection, operation, outcome, duration)
}

// RecordPage records one keyset page fetch when enabled.
func (r *Recorder) RecordPage(collection string, duration time.Duration) {
	if !r.enabled {
		return
	}
	RecordPage(collection, duration)
}
