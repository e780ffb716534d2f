// internal/metrics/collector.go
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rooch_portal"

// MetricType представляет тип метрики
type MetricType string

const (
	TransferCounterType  MetricType = "transfer_counter"
	TransferDurationType MetricType = "transfer_duration"
	RPCLatencyType       MetricType = "rpc_latency"
	RefetchCounterType   MetricType = "balance_refetch"
)

// Collector owns the portal's metrics. It implements transfer.Recorder and
// rooch.LatencyObserver.
type Collector struct {
	metrics sync.Map
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{}

	metricsMap := map[MetricType]prometheus.Collector{
		TransferCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of coin transfers submitted to the wallet",
			},
			[]string{"status", "coin"},
		),
		TransferDurationType: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Time from wallet call to its result",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"coin"},
		),
		RPCLatencyType: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"method"},
		),
		RefetchCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_refetch_total",
				Help:      "Balance refetches triggered after transfers",
			},
			[]string{"status"},
		),
	}

	for metricType, metric := range metricsMap {
		c.metrics.Store(metricType, metric)
		if reg != nil {
			reg.MustRegister(metric)
		}
	}
	return c
}

// Reset сбрасывает все метрики (полезно для тестирования)
func (c *Collector) Reset() {
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		}
		return true
	})
}

// RecordTransfer records the outcome and duration of one wallet call.
func (c *Collector) RecordTransfer(coinType, outcome string, d time.Duration) {
	if counter, ok := c.counterVec(TransferCounterType); ok {
		counter.WithLabelValues(outcome, coinType).Inc()
	}
	if hist, ok := c.histogramVec(TransferDurationType); ok {
		hist.WithLabelValues(coinType).Observe(d.Seconds())
	}
}

// RecordRefetch counts balance refetches by result.
func (c *Collector) RecordRefetch(err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	if counter, ok := c.counterVec(RefetchCounterType); ok {
		counter.WithLabelValues(status).Inc()
	}
}

// ObserveRPCLatency records the duration of one RPC call.
func (c *Collector) ObserveRPCLatency(method string, d time.Duration) {
	if hist, ok := c.histogramVec(RPCLatencyType); ok {
		hist.WithLabelValues(method).Observe(d.Seconds())
	}
}

func (c *Collector) counterVec(t MetricType) (*prometheus.CounterVec, bool) {
	m, ok := c.metrics.Load(t)
	if !ok {
		return nil, false
	}
	cv, ok := m.(*prometheus.CounterVec)
	return cv, ok
}

func (c *Collector) histogramVec(t MetricType) (*prometheus.HistogramVec, bool) {
	m, ok := c.metrics.Load(t)
	if !ok {
		return nil, false
	}
	hv, ok := m.(*prometheus.HistogramVec)
	return hv, ok
}

// Handler serves the metrics of gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
