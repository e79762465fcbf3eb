package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"
	"traveltrust/config"
	"traveltrust/internal/chain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const (
	namespace      = "traveltrust"
	unmatchedRoute = "unmatched"
	weiExponent    = -18
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	commits     prometheus.Counter
	events      *prometheus.CounterVec
	transfers   prometheus.Counter
	transferred prometheus.Counter
}

func New(cfg *config.Config) *Metrics {
	labels := prometheus.Labels{}
	if cfg.App.Name != "" {
		labels["service"] = cfg.App.Name
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests by route, method and status code.",
			ConstLabels: labels,
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"route", "method"}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "ledger",
			Name:        "commits_total",
			Help:        "Committed trust operations.",
			ConstLabels: labels,
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "ledger",
			Name:        "events_total",
			Help:        "Committed events by type.",
			ConstLabels: labels,
		}, []string{"type"}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "ledger",
			Name:        "payouts_total",
			Help:        "Value transfers out of component custody.",
			ConstLabels: labels,
		}),
		transferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "ledger",
			Name:        "payout_value_total",
			Help:        "Value paid out of component custody, in the native unit.",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.durations, m.commits, m.events, m.transfers, m.transferred,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Emit counts a committed receipt.
func (m *Metrics) Emit(_ context.Context, receipt *chain.Receipt) {
	m.commits.Inc()

	for _, ev := range receipt.Events {
		m.events.WithLabelValues(ev.Type).Inc()
	}

	for _, tr := range receipt.Transfers {
		m.transfers.Inc()

		if tr.Amount != nil {
			m.transferred.Add(decimal.NewFromBigInt(tr.Amount, weiExponent).InexactFloat64())
		}
	}
}

// Middleware records count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.durations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
