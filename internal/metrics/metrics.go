// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the lead import pipeline.
//
// The global backend defaults to a no-op implementation, so instrumentation
// calls are always safe even when no metrics system is configured. Concrete
// backends (e.g. the Pushgateway pusher in the prompush subpackage) are
// installed once at startup via SetBackend.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
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

// RecordStage measures one pipeline stage: a success/failure counter plus its
// duration. Stages are "load", "filter", "clean", "format", and "insert".
func RecordStage(stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"stage": stage, "status": status}
	backend.IncCounter("lead_import_stage_total", 1, lbls)
	backend.ObserveHistogram("lead_import_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given kind. Kinds
// mirror the run summary: "candidates", "inserted",
// "rejected_missing_npi", "rejected_missing_phone", "rejected_duplicate_npi".
func RecordRows(kind string, delta int) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("lead_import_records_total", float64(delta), Labels{"kind": kind})
}

// RecordChunks increments the committed-chunk counter for the batch inserter.
func RecordChunks(delta int) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("lead_import_chunks_total", float64(delta), nil)
}
