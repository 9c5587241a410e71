package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the shorts discovery service.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           *prometheus.CounterVec
	searchesTotal         prometheus.Counter
	relaxedSearchesTotal  prometheus.Counter
	failedDetailBatches   prometheus.Counter
	exportsTotal          prometheus.Counter
	quotaCostUnits        prometheus.Gauge
	quotaRemainingUnits   prometheus.Gauge
	quotaSearchesEstimate prometheus.Gauge
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shorts_errors_total",
			Help: "Total number of HTTP responses with error status, by status code",
		}, []string{"code"}),
		searchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_searches_total",
			Help: "Total number of completed searches",
		}),
		relaxedSearchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_relaxed_searches_total",
			Help: "Completed searches whose result set was produced by relaxing filters",
		}),
		failedDetailBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_failed_detail_batches_total",
			Help: "Video detail batches dropped after an upstream failure",
		}),
		exportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shorts_exports_total",
			Help: "Total number of CSV exports served",
		}),
		quotaCostUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shorts_quota_cost_units",
			Help: "Quota units spent today according to the in-process ledger",
		}),
		quotaRemainingUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shorts_quota_remaining_units",
			Help: "Quota units left today according to the in-process ledger",
		}),
		quotaSearchesEstimate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shorts_quota_estimated_searches_left",
			Help: "Estimated number of further 25-result searches within today's quota",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.searchesTotal,
		m.relaxedSearchesTotal,
		m.failedDetailBatches,
		m.exportsTotal,
		m.quotaCostUnits,
		m.quotaRemainingUnits,
		m.quotaSearchesEstimate,
	)

	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the error counter for the given HTTP status.
func (m *Metrics) IncErrors(status int) {
	m.errorsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// IncSearches increments the completed search counter.
func (m *Metrics) IncSearches() {
	m.searchesTotal.Inc()
}

// IncRelaxedSearches increments the relaxed search counter.
func (m *Metrics) IncRelaxedSearches() {
	m.relaxedSearchesTotal.Inc()
}

// AddFailedDetailBatches adds n dropped detail batches.
func (m *Metrics) AddFailedDetailBatches(n int) {
	if n > 0 {
		m.failedDetailBatches.Add(float64(n))
	}
}

// IncExports increments the export counter.
func (m *Metrics) IncExports() {
	m.exportsTotal.Inc()
}

// SetQuota sets the quota gauges.
func (m *Metrics) SetQuota(cost, remaining, searchesLeft int) {
	m.quotaCostUnits.Set(float64(cost))
	m.quotaRemainingUnits.Set(float64(remaining))
	m.quotaSearchesEstimate.Set(float64(searchesLeft))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. quota).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
