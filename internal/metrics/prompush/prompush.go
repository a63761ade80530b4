// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the metric labels (step, status, entity, table, rule) onto
//     Prometheus labels; job is the Pushgateway grouping key.
//   - Pushing collected metrics to a Pushgateway instead of exposing an HTTP
//     scrape endpoint, which suits a batch job that exits after one run.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"elt/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec
	stepDuration *prometheus.SummaryVec

	sourceRows    *prometheus.CounterVec
	publishedRows *prometheus.CounterVec
	findingRows   *prometheus.CounterVec
	batchCounter  prometheus.Counter
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often the pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "warehouse"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Build step executions, partitioned by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of build steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"step", "status"}),
		sourceRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SourceRows,
			Help: "Raw rows per source entity and kind (read, kept, dropped, skipped).",
		}, []string{"entity", "kind"}),
		publishedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.PublishedRows,
			Help: "Rows written per warehouse table.",
		}, []string{"table"}),
		findingRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.FindingRows,
			Help: "Failing rows per validation rule and severity.",
		}, []string{"rule", "severity"}),
		batchCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Bulk-copy batches flushed for this job.",
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":   b.stepCounter,
		"step summary":   b.stepDuration,
		"source rows":    b.sourceRows,
		"published rows": b.publishedRows,
		"finding rows":   b.findingRows,
		"batch counter":  b.batchCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.SourceRows:
		if b.sourceRows != nil {
			b.sourceRows.WithLabelValues(labels["entity"], labels["kind"]).Add(delta)
		}
	case metrics.PublishedRows:
		if b.publishedRows != nil {
			b.publishedRows.WithLabelValues(labels["table"]).Add(delta)
		}
	case metrics.FindingRows:
		if b.findingRows != nil {
			b.findingRows.WithLabelValues(labels["rule"], labels["severity"]).Add(delta)
		}
	case metrics.BatchesTotal:
		if b.batchCounter != nil {
			b.batchCounter.Add(delta)
		}
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
