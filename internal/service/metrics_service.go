package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP, cache and timetable generation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	attemptOutcomes    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	attemptsPerRun     prometheus.Observer

	cacheHitCount  uint64
	cacheMissCount uint64
}

var _ timetable.Observer = (*MetricsService)(nil)

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_display_cache_read_seconds",
		Help:    "Latency of display grid cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_display_cache_write_seconds",
		Help:    "Latency of display grid cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_display_cache_hit_ratio",
		Help: "Share of display grid lookups served from cache",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_display_cache_hits_total",
		Help: "Display grids served from cache",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_display_cache_misses_total",
		Help: "Display grids rebuilt from stored slots",
	})

	attemptOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generation_attempts_total",
		Help: "Generation attempts by outcome",
	}, []string{"outcome"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Duration of complete generation runs by final state",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
	}, []string{"state"})

	attemptsPerRun := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_attempts_per_run",
		Help:    "Attempts consumed by each generation run",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "timetable_api_goroutines",
		Help: "Goroutines currently running, including generation workers",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		attemptOutcomes, generationDuration, attemptsPerRun,
		goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		attemptOutcomes:    attemptOutcomes,
		generationDuration: generationDuration,
		attemptsPerRun:     attemptsPerRun,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the collector registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveAttempt counts one generation attempt by outcome.
func (m *MetricsService) ObserveAttempt(outcome timetable.Outcome) {
	if m == nil {
		return
	}
	m.attemptOutcomes.WithLabelValues(string(outcome)).Inc()
}

// ObserveGeneration records a finished generation run.
func (m *MetricsService) ObserveGeneration(state timetable.State, attempts int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
	m.attemptsPerRun.Observe(float64(attempts))
}
