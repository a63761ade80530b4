// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the warehouse build.
//
// The package exposes a narrow interface (Backend) focused on counters and
// timing data, with a global, pluggable backend that defaults to a no-op, so
// metrics are always safe to call even when no real backend is configured.
// Concrete systems (Prometheus Pushgateway, Datadog) live in subpackages.
package metrics

import "time"

// Metric names shared with the backends.
const (
	StepTotal     = "warehouse_step_total"
	StepDuration  = "warehouse_step_duration_seconds"
	SourceRows    = "warehouse_source_rows_total"
	PublishedRows = "warehouse_published_rows_total"
	FindingRows   = "warehouse_finding_rows_total"
	BatchesTotal  = "warehouse_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
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

// RecordStep measures latency and success/failure of one build step
// (load, build, validate, publish).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordSourceRows counts rows of one raw stream by kind: "read", "kept",
// "dropped" or "skipped".
func RecordSourceRows(job, entity, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(SourceRows, float64(delta), Labels{
		"job":    job,
		"entity": entity,
		"kind":   kind,
	})
}

// RecordPublished counts rows written to a warehouse table.
func RecordPublished(job, table string, rows int64) {
	if rows <= 0 {
		return
	}
	backend.IncCounter(PublishedRows, float64(rows), Labels{
		"job":   job,
		"table": table,
	})
}

// RecordFinding counts failing rows of a validation rule.
func RecordFinding(job, rule, severity string, failing int) {
	if failing <= 0 {
		return
	}
	backend.IncCounter(FindingRows, float64(failing), Labels{
		"job":      job,
		"rule":     rule,
		"severity": severity,
	})
}

// RecordBatches increments the bulk-copy batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
