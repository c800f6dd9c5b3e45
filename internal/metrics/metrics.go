// Package metrics exposes Prometheus collectors for the blog build and the preview server.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	registry *prometheus.Registry

	postsLoadedTotal           *prometheus.CounterVec
	imageLookupsTotal          *prometheus.CounterVec
	pagesWrittenTotal          prometheus.Counter
	buildDurationSeconds       prometheus.Histogram
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		factory := promauto.With(registry)

		postsLoadedTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_posts_loaded_total",
				Help: "Total number of post sources read, labeled by format and outcome.",
			},
			[]string{"format", "outcome"},
		)

		imageLookupsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_image_lookups_total",
				Help: "Total number of stock image lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		pagesWrittenTotal = factory.NewCounter(
			prometheus.CounterOpts{
				Name: "blog_pages_written_total",
				Help: "Total number of post pages written to the output sink.",
			},
		)

		buildDurationSeconds = factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blog_build_duration_seconds",
				Help:    "Histogram of full build durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)

		rateLimitDelaysSeconds = factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blog_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5},
			},
			[]string{"key"},
		)

		httpRequestsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_http_requests_total",
				Help: "Total number of preview HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "preview_http_request_duration_seconds",
				Help:    "Histogram of preview HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObservePostLoaded counts one post source by format and outcome.
func ObservePostLoaded(format, outcome string) {
	Init()
	postsLoadedTotal.WithLabelValues(format, outcome).Inc()
}

// ObserveImageLookup counts one image lookup.
func ObserveImageLookup(outcome string) {
	Init()
	imageLookupsTotal.WithLabelValues(outcome).Inc()
}

// IncPagesWritten counts one written post page.
func IncPagesWritten() {
	Init()
	pagesWrittenTotal.Inc()
}

// ObserveBuildDuration records how long a build took.
func ObserveBuildDuration(duration time.Duration) {
	Init()
	buildDurationSeconds.Observe(duration.Seconds())
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(key string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(key).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Push sends every collector to a Prometheus Pushgateway under the given job name.
// Builds are short-lived, so nothing would be around to answer a scrape.
func Push(ctx context.Context, gatewayURL, job string) error {
	Init()
	if gatewayURL == "" {
		return fmt.Errorf("push metrics: gateway url is empty")
	}
	if err := push.New(gatewayURL, job).Gatherer(registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
