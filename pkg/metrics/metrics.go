package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the process metrics on a private registry so the handler
// only ever exposes what is registered here.
type Collector struct {
	reg *prometheus.Registry

	UpstreamCalls    *prometheus.CounterVec // endpoint label
	UpstreamFailures *prometheus.CounterVec // endpoint, reason labels
	UpstreamDuration prometheus.Histogram

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		UpstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trenovivo_upstream_calls_total",
			Help: "Total calls to the ViaggiaTreno API by endpoint.",
		}, []string{"endpoint"}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trenovivo_upstream_failures_total",
			Help: "Failed ViaggiaTreno calls by endpoint and failure class.",
		}, []string{"endpoint", "reason"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trenovivo_upstream_duration_seconds",
			Help:    "ViaggiaTreno call latency.",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trenovivo_station_cache_hits_total",
			Help: "Station directory cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trenovivo_station_cache_misses_total",
			Help: "Station directory cache misses.",
		}),
	}

	reg.MustRegister(
		c.UpstreamCalls,
		c.UpstreamFailures,
		c.UpstreamDuration,
		c.CacheHits,
		c.CacheMisses,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
