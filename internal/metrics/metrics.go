// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
	"github.com/JakeFAU/team-logo-scraper/internal/progress"
)

const namespace = "teamlogos"

// ErrNilRegistry is returned by New when no registerer is supplied.
var ErrNilRegistry = errors.New("metrics: nil registry")

// Metrics groups the scraper collectors registered on a single registry.
type Metrics struct {
	fetchesTotal         *prometheus.CounterVec
	fetchDuration        *prometheus.HistogramVec
	checkpointsTotal     *prometheus.CounterVec
	storedRecords        prometheus.Gauge
	teamsFound           prometheus.Gauge
	requestsIssued       prometheus.Gauge
	candidatesCompleted  prometheus.Gauge
	candidatesTotal      prometheus.Gauge
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDurations *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	m := &Metrics{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Team page fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Histogram of team page fetch latencies, labeled by outcome.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"outcome"},
		),
		checkpointsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkpoints_total",
				Help:      "Output file writes, labeled by status.",
			},
			[]string{"status"},
		),
		storedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_records",
			Help:      "Records in the most recent checkpoint.",
		}),
		teamsFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "teams_found",
			Help:      "Teams added during the current run.",
		}),
		requestsIssued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_issued",
			Help:      "Page requests issued during the current run.",
		}),
		candidatesCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates_completed",
			Help:      "Candidate team identifiers already probed.",
		}),
		candidatesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate team identifiers across all ranges.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Requests served by the status endpoint, labeled by method and code.",
			},
			[]string{"method", "code"},
		),
		httpRequestDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of status endpoint latencies, labeled by method and route.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
	}

	collectors := []prometheus.Collector{
		m.fetchesTotal,
		m.fetchDuration,
		m.checkpointsTotal,
		m.storedRecords,
		m.teamsFound,
		m.requestsIssued,
		m.candidatesCompleted,
		m.candidatesTotal,
		m.httpRequestsTotal,
		m.httpRequestDurations,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

// Handler returns an http.Handler exposing the gatherer's metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveFetch records a single fetch outcome.
func (m *Metrics) ObserveFetch(res crawler.FetchResult) {
	outcome := res.Status.String()
	m.fetchesTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())
}

// ObserveCheckpoint records a checkpoint write of n records.
func (m *Metrics) ObserveCheckpoint(n int, err error) {
	if err != nil {
		m.checkpointsTotal.WithLabelValues("error").Inc()
		return
	}
	m.checkpointsTotal.WithLabelValues("ok").Inc()
	m.storedRecords.Set(float64(n))
}

// Update implements progress.Sink.
func (m *Metrics) Update(s progress.Snapshot) {
	m.teamsFound.Set(float64(s.Found))
	m.requestsIssued.Set(float64(s.Requests))
	m.candidatesCompleted.Set(float64(s.Completed))
	m.candidatesTotal.Set(float64(s.Total))
}

// Close implements progress.Sink.
func (m *Metrics) Close() error {
	return nil
}

// Middleware is a chi middleware that records HTTP request metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.status)).Inc()
		m.httpRequestDurations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentFetcher wraps next so every fetch is observed.
func InstrumentFetcher(next crawler.Fetcher, m *Metrics) crawler.Fetcher {
	if m == nil {
		return next
	}
	return fetcherFunc(func(ctx context.Context, url string) crawler.FetchResult {
		res := next.Fetch(ctx, url)
		m.ObserveFetch(res)
		return res
	})
}

type fetcherFunc func(ctx context.Context, url string) crawler.FetchResult

func (f fetcherFunc) Fetch(ctx context.Context, url string) crawler.FetchResult {
	return f(ctx, url)
}

// InstrumentCheckpointer wraps next so every checkpoint is observed.
func InstrumentCheckpointer(next crawler.Checkpointer, m *Metrics) crawler.Checkpointer {
	if m == nil {
		return next
	}
	return checkpointerFunc(func(ctx context.Context, records []crawler.Record) error {
		err := next.Save(ctx, records)
		m.ObserveCheckpoint(len(records), err)
		return err
	})
}

type checkpointerFunc func(ctx context.Context, records []crawler.Record) error

func (f checkpointerFunc) Save(ctx context.Context, records []crawler.Record) error {
	return f(ctx, records)
}
