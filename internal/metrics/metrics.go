// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the ingestion pipeline.
//
// It exposes a narrow Backend interface (counters and duration
// observations) behind a global, pluggable backend that defaults to a
// no-op, so the pipeline stages can always record without checking
// whether metrics are configured. Concrete systems live in subpackages;
// prompush adapts the interface to a Prometheus Pushgateway.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes collected metrics if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage measures one pipeline stage execution for a source: latency
// plus a success/failure counter.
func RecordStage(source, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"source": source,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter("ingest_stage_total", 1, lbls)
	backend.ObserveDuration("ingest_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments the row-level counter for a source. Typical kinds
// mirror the normalize report: "extracted", "coerced", "defaulted",
// "dropped", "loaded".
func RecordRows(source, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ingest_rows_total", float64(delta), Labels{
		"source": source,
		"kind":   kind,
	})
}
