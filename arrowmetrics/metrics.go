// Package arrowmetrics instruments an arrowtable.Table with Prometheus
// counters and histograms, and serves them (plus the runtime log-level
// control panel in the monitor package) over HTTP, in the shape of
// monitor.Server and cmd/ocprometheus's collector.
package arrowmetrics

import (
	"github.com/arrowtable/arrowtable/arrowtable"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK     = "ok"
	resultFull   = "full"
	resultAbsent = "absent"
)

// Instrumented wraps an *arrowtable.Table[K, V] and records operation
// counts on every call. The displacement-length and window-length
// histograms are recorded only through ObserveDisplacement and
// ObserveWindowLength. It forwards every call to the underlying table unchanged; it
// never touches the table's invariants or introduces locking of its
// own (arrowtable stays single-threaded, per its concurrency model).
type Instrumented[K any, V any] struct {
	table *arrowtable.Table[K, V]

	inserts      *prometheus.CounterVec
	searches     *prometheus.CounterVec
	deletes      *prometheus.CounterVec
	displacement prometheus.Histogram
	windowLength prometheus.Histogram
}

// NewInstrumented wraps table, registering its metrics with reg.
func NewInstrumented[K any, V any](table *arrowtable.Table[K, V], reg prometheus.Registerer) *Instrumented[K, V] {
	i := &Instrumented[K, V]{
		table: table,
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrowtable_inserts_total",
			Help: "Number of Insert calls, by result.",
		}, []string{"result"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrowtable_searches_total",
			Help: "Number of Search calls, by result.",
		}, []string{"result"}),
		deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrowtable_deletes_total",
			Help: "Number of Delete calls, by result.",
		}, []string{"result"}),
		displacement: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arrowtable_displacement_length",
			Help:    "Number of incumbents displaced by a single Insert call.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		windowLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arrowtable_window_length",
			Help:    "Length of a home bucket's arrow window, sampled on request.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(i.inserts, i.searches, i.deletes, i.displacement, i.windowLength)
	return i
}

// Insert instruments arrowtable.Table.Insert, counting each call as
// "ok" (new key or overwrite) or "full" (any error). It records no
// displacement sample: arrowtable does not expose how many incumbents
// an Insert displaced.
func (i *Instrumented[K, V]) Insert(k K, v V) (V, bool, error) {
	prev, had, err := i.table.Insert(k, v)
	switch {
	case err != nil:
		i.inserts.WithLabelValues(resultFull).Inc()
	default:
		i.inserts.WithLabelValues(resultOK).Inc()
	}
	return prev, had, err
}

// Search instruments arrowtable.Table.Search.
func (i *Instrumented[K, V]) Search(k K) (V, bool) {
	v, ok := i.table.Search(k)
	if ok {
		i.searches.WithLabelValues(resultOK).Inc()
	} else {
		i.searches.WithLabelValues(resultAbsent).Inc()
	}
	return v, ok
}

// Delete instruments arrowtable.Table.Delete.
func (i *Instrumented[K, V]) Delete(k K) (V, bool) {
	v, ok := i.table.Delete(k)
	if ok {
		i.deletes.WithLabelValues(resultOK).Inc()
	} else {
		i.deletes.WithLabelValues(resultAbsent).Inc()
	}
	return v, ok
}

// Len reports the table's current length.
func (i *Instrumented[K, V]) Len() int { return i.table.Len() }

// Cap reports the table's fixed capacity.
func (i *Instrumented[K, V]) Cap() int { return i.table.Cap() }

// MaxWindowLen reports the length of the table's longest window.
func (i *Instrumented[K, V]) MaxWindowLen() int { return i.table.MaxWindowLen() }

// DisplacedCount reports the number of stored entries not sitting in
// their own home slot.
func (i *Instrumented[K, V]) DisplacedCount() int { return i.table.DisplacedCount() }

// ObserveWindowLength records a single window-length sample, typically
// gathered by a periodic scan in the caller (cmd/arrowtrace records
// MaxWindowLen here on each Influx snapshot tick).
func (i *Instrumented[K, V]) ObserveWindowLength(length int) {
	i.windowLength.Observe(float64(length))
}

// ObserveDisplacement records the number of incumbents one Insert call
// displaced, for callers (such as a debug build) that can count it
// directly.
func (i *Instrumented[K, V]) ObserveDisplacement(count int) {
	i.displacement.Observe(float64(count))
}
