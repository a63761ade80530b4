// Package datadog ships warehouse run metrics to a DogStatsD agent.
//
// Every metric carries the job and service tags, so one agent can separate
// several warehouse jobs. Duration metrics (names ending in "_seconds") are
// sent as distributions so percentiles aggregate across hosts; other
// observations go out as histograms.
package datadog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"elt/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// DefaultNamespace prefixes every metric name when Config.Namespace is empty.
const DefaultNamespace = "olist."

// Config selects the agent and the tags stamped on each metric.
type Config struct {
	// Addr is "host:port" or "unix:///path/to/dsd.socket".
	Addr string

	// Job tags every metric as job:<Job>.
	Job string

	Namespace string

	// Tags are extra "key:value" pairs, e.g. "env:prod".
	Tags []string
}

func (c Config) tags() []string {
	tags := []string{"service:warehouse"}
	if c.Job != "" {
		tags = append(tags, "job:"+c.Job)
	}
	return append(tags, c.Tags...)
}

// Backend implements metrics.Backend over a statsd client.
type Backend struct {
	client statsd.ClientInterface
}

// NewBackend dials the agent described by cfg.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("datadog: agent address is required")
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	c, err := statsd.New(cfg.Addr,
		statsd.WithoutTelemetry(),
		statsd.WithNamespace(ns),
		statsd.WithTags(cfg.tags()),
	)
	if err != nil {
		return nil, fmt.Errorf("datadog: dial %s: %w", cfg.Addr, err)
	}
	return &Backend{client: c}, nil
}

// IncCounter sends delta rounded to the nearest integer; a zero delta is
// not sent.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	n := int64(math.Round(delta))
	if b.client == nil || n == 0 {
		return
	}
	_ = b.client.Count(name, n, tags(labels), 1)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	if strings.HasSuffix(name, "_seconds") {
		_ = b.client.Distribution(name, value, tags(labels), 1)
		return
	}
	_ = b.client.Histogram(name, value, tags(labels), 1)
}

// Flush drains buffered datagrams and closes the client; call it once at
// the end of a run.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return errors.Join(b.client.Flush(), b.client.Close())
}

// tags renders labels as sorted "key:value" tags. Labels with an empty
// value are dropped.
func tags(lbls metrics.Labels) []string {
	var out []string
	for k, v := range lbls {
		if v == "" {
			continue
		}
		out = append(out, k+":"+v)
	}
	slices.Sort(out)
	return out
}
