package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"elt/internal/metrics"
)

type sent struct {
	kind, name string
	value float64
	tags  []string
}

// recorder captures the calls Backend makes; other client methods are left
// to the nil embedded interface and must not be reached.
type recorder struct {
	statsd.ClientInterface
	calls  []sent
	closed bool
}

func (r *recorder) Count(name string, value int64, tags []string, _ float64) error {
	r.calls = append(r.calls, sent{"count", name, float64(value), tags})
	return nil
}

func (r *recorder) Histogram(name string, value float64, tags []string, _ float64) error {
	r.calls = append(r.calls, sent{"histogram", name, value, tags})
	return nil
}

func (r *recorder) Distribution(name string, value float64, tags []string, _ float64) error {
	r.calls = append(r.calls, sent{"distribution", name, value, tags})
	return nil
}

func (r *recorder) Flush() error { return nil }

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestTags(t *testing.T) {
	t.Parallel()

	got := tags(metrics.Labels{"table": "fact_sales", "job": "olist", "step": ""})
	if want := "job:olist,table:fact_sales"; strings.Join(got, ",") != want {
		t.Fatalf("tags = %v, want %s", got, want)
	}
	if tags(nil) != nil {
		t.Fatal("tags(nil) should be nil")
	}
}

func TestConfigTags(t *testing.T) {
	t.Parallel()

	got := Config{Job: "nightly", Tags: []string{"env:test"}}.tags()
	if want := "service:warehouse,job:nightly,env:test"; strings.Join(got, ",") != want {
		t.Fatalf("tags = %v, want %s", got, want)
	}
	if got := (Config{}).tags(); len(got) != 1 {
		t.Fatalf("tags without job = %v", got)
	}
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{Job: "olist"}); err == nil {
		t.Fatal("expected error for empty Addr")
	}
}

func TestBackend_RoutesByMetricKind(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	b := &Backend{client: rec}

	b.IncCounter(metrics.PublishedRows, 41.6, metrics.Labels{"table": "dim_orders"})
	b.IncCounter(metrics.BatchesTotal, 0.2, nil)
	b.ObserveHistogram(metrics.StepDuration, 1.5, metrics.Labels{"step": "publish"})
	b.ObserveHistogram("warehouse_batch_rows", 500, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := []sent{
		{"count", metrics.PublishedRows, 42, []string{"table:dim_orders"}},
		{"distribution", metrics.StepDuration, 1.5, []string{"step:publish"}},
		{"histogram", "warehouse_batch_rows", 500, nil},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", rec.calls, want)
	}
	for i, w := range want {
		got := rec.calls[i]
		if got.kind != w.kind || got.name != w.name || got.value != w.value || strings.Join(got.tags, ",") != strings.Join(w.tags, ",") {
			t.Errorf("call %d = %+v, want %+v", i, got, w)
		}
	}
	if !rec.closed {
		t.Error("Flush did not close the client")
	}
}

func TestBackend_NilClientIsNoop(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter(metrics.StepTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// TestBackend_SendsDogStatsD points a real client at a local UDP socket and
// checks the datagram written on Flush.
func TestBackend_SendsDogStatsD(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String(), Job: "olist", Tags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter(metrics.PublishedRows, 42, metrics.Labels{"table": "fact_sales"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read datagram: %v", err)
	}
	got := string(buf[:n])
	for _, want := range []string{DefaultNamespace + metrics.PublishedRows + ":42|c", "job:olist", "service:warehouse", "env:test", "table:fact_sales"} {
		if !strings.Contains(got, want) {
			t.Errorf("datagram %q missing %q", got, want)
		}
	}
}
