// Package metrics declares every Prometheus collector the API exposes on /api/metrics.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const infrastructureInterval = 15 * time.Second

var (
	Registry = prometheus.NewRegistry()
	factory  = promauto.With(Registry)

	// LatencyBuckets cover a few milliseconds up to tens of seconds
	LatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	httpLabels = []string{"http_request_method", "http_route", "http_response_status_code"}
	opLabels   = []string{"operation", "status"}
)

// HTTP server
var (
	HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: LatencyBuckets,
	}, httpLabels)

	HTTPRequestTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_request_total",
		Help: "Total number of HTTP requests",
	}, httpLabels)

	ActiveRequests = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_server_active_requests",
		Help: "Number of in-flight HTTP requests",
	}, []string{"http_request_method"})

	RateLimitRejections = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_rate_limited_total",
		Help: "Requests refused by a rate limiter",
	}, []string{"limiter"})
)

// Backing services
var (
	DBRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_client_operation_duration_seconds",
		Help:    "Database operation duration in seconds",
		Buckets: LatencyBuckets,
	}, opLabels)

	DBRequestTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "db_client_operation_total",
		Help: "Total number of database operations",
	}, opLabels)

	StorageRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_client_operation_duration_seconds",
		Help:    "Object storage operation duration in seconds",
		Buckets: LatencyBuckets,
	}, opLabels)

	StorageRequestTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_client_operation_total",
		Help: "Total number of object storage operations",
	}, opLabels)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state",
	}, []string{"breaker"})

	CacheHits = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"cache_name"})

	CacheMisses = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"cache_name"})

	CacheSize = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cache_entries",
		Help: "Number of entries in cache",
	}, []string{"cache_name"})
)

// Address book
var (
	UserRegistrations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "contactbook_user_registrations_total",
		Help: "Sign-up attempts by outcome",
	}, []string{"status"})

	UserLogins = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "contactbook_user_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"status"})

	ProfileUpdates = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "contactbook_profile_updates_total",
		Help: "Profile updates by outcome",
	}, []string{"status"})

	ContactMutations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "contactbook_contact_mutations_total",
		Help: "Contact create, update and delete operations by outcome",
	}, opLabels)

	PictureUploads = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "contactbook_picture_uploads_total",
		Help: "Contact picture uploads by outcome",
	}, []string{"status"})

	// ValidationFailures counts rejected submissions per form and field
	ValidationFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "contactbook_validation_failures_total",
		Help: "Field validation failures",
	}, []string{"form", "field"})
)

// Runtime
var (
	GoRoutines = factory.NewGauge(prometheus.GaugeOpts{
		Name: "process_runtime_go_goroutines",
		Help: "Number of goroutines",
	})

	HeapAlloc = factory.NewGauge(prometheus.GaugeOpts{
		Name: "process_runtime_go_mem_heap_alloc_bytes",
		Help: "Heap allocated bytes",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordInfrastructureMetrics samples runtime gauges until stop is closed
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(infrastructureInterval)
		defer ticker.Stop()

		for {
			sampleRuntime()
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

func sampleRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	GoRoutines.Set(float64(runtime.NumGoroutine()))
	HeapAlloc.Set(float64(m.HeapAlloc))
}

// MeasureDuration returns the seconds elapsed since start
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
