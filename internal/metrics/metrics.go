// Package metrics exposes Prometheus instruments for the token lifecycle
// and stats aggregation. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spotify_social"

// Recorder owns a private registry so tests can build as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	tokenExchanges *prometheus.CounterVec
	tokenRefreshes *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	fetchErrors    *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		tokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_exchanges_total",
			Help:      "Authorization code exchanges by result.",
		}, []string{"result"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Access token refreshes by result.",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_cache_lookups_total",
			Help:      "Stats cache lookups by time range and outcome.",
		}, []string{"range", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Latency of catalog fetches issued for stats.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_errors_total",
			Help:      "Failed catalog fetches by source and error kind.",
		}, []string{"source", "kind"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.tokenExchanges,
		r.tokenRefreshes,
		r.cacheLookups,
		r.fetchDuration,
		r.fetchErrors,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// TokenExchange counts a code exchange.
func (r *Recorder) TokenExchange(ok bool) {
	if r == nil {
		return
	}
	r.tokenExchanges.WithLabelValues(result(ok)).Inc()
}

// TokenRefresh counts a refresh attempt.
func (r *Recorder) TokenRefresh(ok bool) {
	if r == nil {
		return
	}
	r.tokenRefreshes.WithLabelValues(result(ok)).Inc()
}

// CacheLookup counts a stats cache read. outcome is "hit", "miss", "stale" or "bypass".
func (r *Recorder) CacheLookup(timeRange, outcome string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(timeRange, outcome).Inc()
}

// Fetch observes one catalog fetch. kind is empty on success.
func (r *Recorder) Fetch(source string, elapsed time.Duration, kind string) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if kind != "" {
		r.fetchErrors.WithLabelValues(source, kind).Inc()
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
