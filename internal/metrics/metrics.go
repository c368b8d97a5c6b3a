// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and background jobs.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in ms",
			Buckets: []float64{50, 100, 200, 300, 400, 500},
		}, []string{"method", "route", "status_code"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_executions_total",
			Help: "Total number of times a background job has executed",
		}, []string{"job_name"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Time taken for background jobs to execute",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		}, []string{"job_name"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.jobRuns,
		m.jobDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes request durations labeled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
			route := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			m.requestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
				Observe(seconds * 1000)
		}))
		defer timer.ObserveDuration()

		next.ServeHTTP(ww, r)
	})
}

// TrackJob wraps a background job with execution count and duration metrics.
func (m *Metrics) TrackJob(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		m.jobRuns.WithLabelValues(name).Inc()

		timer := prometheus.NewTimer(m.jobDuration.WithLabelValues(name))
		defer timer.ObserveDuration()

		return fn(ctx)
	}
}
