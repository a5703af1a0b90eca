package textgen

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	metricsOnce     sync.Once
)

func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}

func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}
	return h
}

func initMetrics() {
	metricsOnce.Do(func() {
		requestsTotal = getOrCreateCounterVec(prometheus.CounterOpts{
			Name: "sitecms_textgen_requests_total",
			Help: "Text generation calls by provider and outcome",
		}, []string{"provider", "status"})
		requestDuration = getOrCreateHistogramVec(prometheus.HistogramOpts{
			Name:    "sitecms_textgen_duration_seconds",
			Help:    "Latency of text generation calls",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		}, []string{"provider"})
	})
}

type providerMetrics struct {
	provider string
}

func newProviderMetrics(provider string) *providerMetrics {
	initMetrics()
	return &providerMetrics{provider: provider}
}

func (m *providerMetrics) observe(status string, d time.Duration) {
	requestsTotal.WithLabelValues(m.provider, status).Inc()
	if d > 0 {
		requestDuration.WithLabelValues(m.provider).Observe(d.Seconds())
	}
}
