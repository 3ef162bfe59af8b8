package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the application metrics.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	generationDuration *prometheus.HistogramVec
	cellsAssigned      *prometheus.CounterVec
	cellsFree          *prometheus.CounterVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetricsService registers all collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timetable_generation_duration_seconds",
			Help:    "Timetable generation latency per section.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"section"}),
		cellsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_cells_assigned_total",
			Help: "Grid cells assigned a session, per section.",
		}, []string{"section"}),
		cellsFree: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_cells_free_total",
			Help: "Grid cells left free by the repetition constraint, per section.",
		}, []string{"section"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lab_report_cache_hits_total",
			Help: "Lab report cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lab_report_cache_misses_total",
			Help: "Lab report cache misses.",
		}),
	}

	registry.MustRegister(
		s.httpRequests,
		s.httpDuration,
		s.generationDuration,
		s.cellsAssigned,
		s.cellsFree,
		s.cacheHits,
		s.cacheMisses,
	)
	return s
}

// Registry exposes the registry for the /metrics handler.
func (s *MetricsService) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry in Prometheus exposition format.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (s *MetricsService) ObserveHTTP(method, path, status string, duration time.Duration) {
	s.httpRequests.WithLabelValues(method, path, status).Inc()
	s.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveGeneration records one completed timetable generation.
func (s *MetricsService) ObserveGeneration(section string, duration time.Duration, assigned, free int) {
	s.generationDuration.WithLabelValues(section).Observe(duration.Seconds())
	s.cellsAssigned.WithLabelValues(section).Add(float64(assigned))
	s.cellsFree.WithLabelValues(section).Add(float64(free))
}

// ObserveCacheHit counts a lab report cache hit.
func (s *MetricsService) ObserveCacheHit() { s.cacheHits.Inc() }

// ObserveCacheMiss counts a lab report cache miss.
func (s *MetricsService) ObserveCacheMiss() { s.cacheMisses.Inc() }
