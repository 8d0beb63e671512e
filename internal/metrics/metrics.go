// Package metrics holds the Prometheus collectors for price resolution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "silverspot"

// Outcomes of a single resolution.
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeStale    = "stale"
	OutcomeFallback = "fallback"
)

// Provider request statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Metrics is the set of collectors recorded by the resolver. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	resolutions   *prometheus.CounterVec
	providerReqs  *prometheus.CounterVec
	providerErrs  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	spotPrice     *prometheus.GaugeVec
	cacheAge      prometheus.Gauge
}

// New builds the collectors on a dedicated registry, together with the
// standard Go and process collectors.
func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}
	m.resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Price resolutions by outcome",
	}, []string{"outcome"})
	m.providerReqs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Upstream provider attempts by status",
	}, []string{"provider", "status"})
	m.providerErrs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Upstream provider failures by kind",
	}, []string{"provider", "kind"})
	m.fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_fetch_duration_seconds",
		Help:      "Time spent in a single upstream provider call",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
	}, []string{"provider"})
	m.spotPrice = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "spot_price",
		Help:      "Last freshly fetched spot price per troy ounce",
	}, []string{"metal"})
	m.cacheAge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_age_seconds",
		Help:      "Age of the cached price pair at the last resolution",
	})

	m.reg.MustRegister(
		m.resolutions, m.providerReqs, m.providerErrs,
		m.fetchDuration, m.spotPrice, m.cacheAge,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Resolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

// ProviderAttempt records one provider call. kind is only used when status
// is StatusError.
func (m *Metrics) ProviderAttempt(name, status, kind string, took time.Duration) {
	if m == nil {
		return
	}
	m.providerReqs.WithLabelValues(name, status).Inc()
	if status == StatusSkipped {
		return
	}
	m.fetchDuration.WithLabelValues(name).Observe(took.Seconds())
	if status == StatusError {
		m.providerErrs.WithLabelValues(name, kind).Inc()
	}
}

func (m *Metrics) SpotPrice(silver, gold float64) {
	if m == nil {
		return
	}
	m.spotPrice.WithLabelValues("silver").Set(silver)
	m.spotPrice.WithLabelValues("gold").Set(gold)
}

func (m *Metrics) CacheAge(age time.Duration) {
	if m == nil {
		return
	}
	m.cacheAge.Set(age.Seconds())
}
