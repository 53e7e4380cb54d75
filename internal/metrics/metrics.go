// Package metrics exposes Prometheus collectors for the analyzer service.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serroba/page-analyzer/internal/website"
)

// Fetch outcomes recorded by the Fetcher decorator.
const (
	OutcomeOK        = "ok"
	OutcomeEmptyBody = "empty_body"
	OutcomeNetwork   = "network_error"
)

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal        *prometheus.CounterVec
	fetchDuration       prometheus.Histogram
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_fetches_total",
				Help: "Total number of page fetches, labeled by outcome and status class.",
			},
			[]string{"outcome", "status_class"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analyzer_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method, route and code.",
			},
			[]string{"method", "route", "code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(outcome string, statusCode int, duration time.Duration) {
	m.fetchesTotal.WithLabelValues(outcome, statusClass(statusCode)).Inc()
	m.fetchDuration.Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records every request served through the huma API. Routes
// are labeled by their path template to keep cardinality bounded.
func (m *Metrics) Middleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()

	next(ctx)

	route := "unknown"
	if op := ctx.Operation(); op != nil {
		route = op.Path
	}

	status := ctx.Status()
	if status == 0 {
		status = http.StatusOK
	}

	m.ObserveHTTPRequest(ctx.Method(), route, status, time.Since(start))
}

// Fetcher wraps a website.Fetcher and records every fetch.
type Fetcher struct {
	next    website.Fetcher
	metrics *Metrics
}

// NewFetcher decorates next with fetch metrics.
func NewFetcher(next website.Fetcher, m *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: m}
}

func (f *Fetcher) Fetch(ctx context.Context, address string) (website.Page, error) {
	start := time.Now()
	page, err := f.next.Fetch(ctx, address)

	outcome := OutcomeOK

	switch {
	case errors.Is(err, website.ErrEmptyBody):
		outcome = OutcomeEmptyBody
	case err != nil:
		outcome = OutcomeNetwork
	}

	f.metrics.ObserveFetch(outcome, page.StatusCode, time.Since(start))

	return page, err
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "none"
	}

	return strconv.Itoa(code/100) + "xx"
}

var _ website.Fetcher = (*Fetcher)(nil)
