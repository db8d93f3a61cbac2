package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name unless Init overrides it
const DefaultNamespace = "crm"

type collectors struct {
	requestCounter        *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	statusCategoryCounter *prometheus.CounterVec
	authErrorCounter      *prometheus.CounterVec
	dbOperationDuration   *prometheus.HistogramVec
	domainOperationCount  *prometheus.CounterVec
	tokenTouchFailures    prometheus.Counter
	infoGauge             *prometheus.GaugeVec
}

var (
	namespace = DefaultNamespace
	once      sync.Once
	metrics   *collectors
)

func newCollectors(ns string) *collectors {
	return &collectors{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		statusCategoryCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_status_category_total",
				Help:      "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category", "method", "path"},
		),
		authErrorCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "auth_errors_total",
				Help:      "Total number of API token authentication errors",
			},
			[]string{"type"}, // "missing_token", "invalid_token", "db_error"
		),
		dbOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "db_operation_duration_seconds",
				Help:      "Duration of database operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		domainOperationCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "domain_operations_total",
				Help:      "Total number of domain operations by entity",
			},
			[]string{"entity", "operation"},
		),
		tokenTouchFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "token_touch_failures_total",
				Help:      "Total number of failed last_used_at updates on API tokens",
			},
		),
		infoGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "info",
				Help:      "Information about the CRM API service",
			},
			[]string{"version"},
		),
	}
}

func (m *collectors) register() {
	prometheus.MustRegister(m.requestCounter)
	prometheus.MustRegister(m.requestDuration)
	prometheus.MustRegister(m.statusCategoryCounter)
	prometheus.MustRegister(m.authErrorCounter)
	prometheus.MustRegister(m.dbOperationDuration)
	prometheus.MustRegister(m.domainOperationCount)
	prometheus.MustRegister(m.tokenTouchFailures)
	prometheus.MustRegister(m.infoGauge)
}

// get registers the collectors on first use so tests that build several
// servers in one process never register twice
func get() *collectors {
	once.Do(func() {
		metrics = newCollectors(namespace)
		metrics.register()
	})
	return metrics
}

// Init sets the metric namespace and registers all collectors. Only the first
// call has any effect.
func Init(prefix, version string) {
	if prefix != "" && metrics == nil {
		namespace = prefix
	}
	get().infoGauge.With(prometheus.Labels{"version": version}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	get()
	return promhttp.Handler()
}

// MetricsMiddleware records count, latency and status category of each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			m := get()
			status := c.Response().Status
			statusStr := strconv.Itoa(status)
			method := c.Request().Method
			path := c.Path()

			m.requestCounter.WithLabelValues(method, path, statusStr).Inc()
			m.requestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())
			if category := statusCategory(status); category != "" {
				m.statusCategoryCounter.WithLabelValues(category, method, path).Inc()
			}

			return err
		}
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return ""
	}
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func() {
	startTime := time.Now()
	return func() {
		get().dbOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	get().authErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordDomainOperation counts a successful write or transition on an entity
func RecordDomainOperation(entity, operation string) {
	get().domainOperationCount.With(prometheus.Labels{
		"entity":    entity,
		"operation": operation,
	}).Inc()
}

// RecordTokenTouchFailure counts a failed last_used_at write
func RecordTokenTouchFailure() {
	get().tokenTouchFailures.Inc()
}
