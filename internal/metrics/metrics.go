// Package metrics provides Prometheus instrumentation for the pricing service.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuotesTotal counts priced quotes, partitioned by product and decision.
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_quotes_total",
		Help: "Total number of quotes priced",
	}, []string{"product", "decision"})

	// SuggestedRate tracks the distribution of suggested annual rates.
	SuggestedRate = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "credit_suggested_rate_percent",
		Help:    "Suggested annual interest rate in percentage points",
		Buckets: []float64{5, 10, 15, 20, 25, 30, 40, 50, 75, 100, 150, 200, 300, 450},
	}, []string{"product"})

	// FloorDominated counts suggestions where the profitability floor
	// overrode the risk-factor price.
	FloorDominated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_floor_dominated_total",
		Help: "Suggestions raised to the profitability floor",
	}, []string{"product"})

	// RateValidations counts rate validation verdicts by level.
	RateValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_rate_validations_total",
		Help: "Rate validation verdicts",
	}, []string{"level"})

	// CatalogFallbacks counts lookups of unknown product codes.
	CatalogFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_catalog_fallbacks_total",
		Help: "Catalog lookups resolved through a default value",
	}, []string{"field"})

	// QuoteCacheResults counts quote cache hits and misses.
	QuoteCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_quote_cache_total",
		Help: "Quote cache lookups by result",
	}, []string{"result"})

	// BatchSize observes the number of rows per batch request.
	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "credit_batch_size",
		Help:    "Rows per batch pricing request",
		Buckets: prometheus.ExponentialBuckets(1, 4, 6),
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "credit_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "credit_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Route pattern keeps the path label low-cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the wrapped writer so WebSocket upgrades work
// behind this middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
