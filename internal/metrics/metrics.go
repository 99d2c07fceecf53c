// Package metrics holds the prometheus collectors of the content store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "relics"

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	storeOps      *prometheus.CounterVec
	readFallbacks *prometheus.CounterVec
	subscribers   prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Document store reads and writes by collection, operation and result.",
		}, []string{"collection", "op", "result"}),
		readFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_read_fallbacks_total",
			Help:      "Reads that returned the empty default because the document could not be loaded.",
		}, []string{"collection"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "change_feed_subscribers",
			Help:      "Connected change feed websocket clients.",
		}),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.storeOps, m.readFallbacks, m.subscribers}
}

// Registry returns a registry with the go and process collectors and every
// collector in m.
func Registry(m *Metrics) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if m != nil {
		r.MustRegister(m.Collectors()...)
	}

	return r
}

func (m *Metrics) StoreOp(collection, op string, err error) {
	if m == nil {
		return
	}

	result := ResultOK
	if err != nil {
		result = ResultError
	}

	m.storeOps.WithLabelValues(collection, op, result).Inc()
}

func (m *Metrics) ReadFallback(collection string) {
	if m == nil {
		return
	}

	m.readFallbacks.WithLabelValues(collection).Inc()
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}

	m.subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}

	m.subscribers.Dec()
}
