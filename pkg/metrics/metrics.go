// Package metrics is a small Prometheus-compatible registry: counters,
// gauges and histograms grouped into labelled families and rendered in the
// text exposition format.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LatencyBuckets suit calls to a language model, in seconds.
var LatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Counter only goes up.
type Counter struct{ val atomic.Int64 }

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

// Gauge goes up and down.
type Gauge struct{ val atomic.Int64 }

func (g *Gauge) Set(n int64)  { g.val.Store(n) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// Histogram counts observations into cumulative buckets.
type Histogram struct {
	mu         sync.Mutex
	bounds     []float64
	cumulative []uint64
	sum        float64
	count      uint64
}

// Observe records v.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.bounds {
		if v <= b {
			h.cumulative[i]++
		}
	}
	h.sum += v
	h.count++
}

// ObserveDuration records d in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) { h.Observe(d.Seconds()) }

type kind string

const (
	kindCounter   kind = "counter"
	kindGauge     kind = "gauge"
	kindHistogram kind = "histogram"
)

// family is every labelled child of one metric name.
type family struct {
	help     string
	kind     kind
	buckets  []float64
	children map[string]any // rendered label set -> *Counter | *Gauge | *Histogram
}

// Registry holds metric families in registration order.
type Registry struct {
	mu       sync.Mutex
	families map[string]*family
	order    []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{families: make(map[string]*family)}
}

// labelSet renders key/value pairs as {k="v",...}. Odd trailing keys are
// ignored.
func labelSet(kvs []string) string {
	if len(kvs) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i+1 < len(kvs); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", kvs[i], kvs[i+1])
	}
	b.WriteByte('}')
	return b.String()
}

func (r *Registry) child(name, help string, k kind, buckets []float64, labels []string, newMetric func() any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.families[name]
	if !ok {
		f = &family{help: help, kind: k, buckets: buckets, children: make(map[string]any)}
		r.families[name] = f
		r.order = append(r.order, name)
	}
	if f.kind != k {
		panic(fmt.Sprintf("metrics: %s registered as %s, requested as %s", name, f.kind, k))
	}
	key := labelSet(labels)
	c, ok := f.children[key]
	if !ok {
		c = newMetric()
		f.children[key] = c
	}
	return c
}

// Counter returns the counter for name and label pairs, creating it once.
func (r *Registry) Counter(name, help string, labels ...string) *Counter {
	return r.child(name, help, kindCounter, nil, labels, func() any { return &Counter{} }).(*Counter)
}

// Gauge returns the gauge for name and label pairs, creating it once.
func (r *Registry) Gauge(name, help string, labels ...string) *Gauge {
	return r.child(name, help, kindGauge, nil, labels, func() any { return &Gauge{} }).(*Gauge)
}

// Histogram returns the histogram for name and label pairs. Buckets are
// fixed by the first registration of name.
func (r *Registry) Histogram(name, help string, buckets []float64, labels ...string) *Histogram {
	if buckets == nil {
		buckets = LatencyBuckets
	}
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return r.child(name, help, kindHistogram, b, labels, func() any {
		return &Histogram{bounds: b, cumulative: make([]uint64, len(b))}
	}).(*Histogram)
}

// withLE merges an le label into a rendered label set.
func withLE(set, le string) string {
	if set == "" {
		return `{le="` + le + `"}`
	}
	return set[:len(set)-1] + `,le="` + le + `"}`
}

// Render returns the registry in Prometheus text format.
func (r *Registry) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	for _, name := range r.order {
		f := r.families[name]
		if f.help != "" {
			fmt.Fprintf(&b, "# HELP %s %s\n", name, f.help)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, f.kind)

		keys := make([]string, 0, len(f.children))
		for k := range f.children {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, set := range keys {
			switch m := f.children[set].(type) {
			case *Counter:
				fmt.Fprintf(&b, "%s%s %d\n", name, set, m.Value())
			case *Gauge:
				fmt.Fprintf(&b, "%s%s %d\n", name, set, m.Value())
			case *Histogram:
				m.mu.Lock()
				for i, bound := range m.bounds {
					fmt.Fprintf(&b, "%s_bucket%s %d\n", name, withLE(set, fmt.Sprintf("%g", bound)), m.cumulative[i])
				}
				fmt.Fprintf(&b, "%s_bucket%s %d\n", name, withLE(set, "+Inf"), m.count)
				fmt.Fprintf(&b, "%s_sum%s %g\n", name, set, m.sum)
				fmt.Fprintf(&b, "%s_count%s %d\n", name, set, m.count)
				m.mu.Unlock()
			}
		}
	}
	return b.String()
}

// Handler serves the registry.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(r.Render()))
	})
}
