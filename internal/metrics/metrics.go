// Package metrics exposes Prometheus instrumentation behind a small facade
// so call sites never touch the registry directly.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordAssessment(label, coverage string)
	RecordIncidentsIngested(source string, count int)
	RecordPipelineRun(source, status string, duration time.Duration)
	RecordReportCreated(reportType string)
	RecordRiskCacheLookup(result string)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordAssessment(label, coverage string)                       {}
func (m *NoOpMetrics) RecordIncidentsIngested(source string, count int)              {}
func (m *NoOpMetrics) RecordPipelineRun(source, status string, d time.Duration)      {}
func (m *NoOpMetrics) RecordReportCreated(reportType string)                         {}
func (m *NoOpMetrics) RecordRiskCacheLookup(result string)                           {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)                          {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)                        {}
func (m *NoOpMetrics) Handler() http.Handler                                         { return http.NotFoundHandler() }

// PrometheusMetrics implements Metrics on a dedicated registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	assessments      *prometheus.CounterVec
	incidentsIngest  *prometheus.CounterVec
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	reportsCreated   *prometheus.CounterVec
	riskCacheLookups *prometheus.CounterVec
	dbConnections    prometheus.Gauge
	dbQueries        *prometheus.CounterVec
}

// NewPrometheusMetrics creates and registers all service metrics on a fresh
// registry, so tests can build as many instances as they need without
// "already registered" panics.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safesignal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, endpoint and status code.",
		}, []string{"method", "endpoint", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "safesignal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "endpoint"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safesignal",
			Name:      "assessments_total",
			Help:      "Safety assessments by resulting label and coverage.",
		}, []string{"label", "coverage"}),
		incidentsIngest: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safesignal",
			Name:      "incidents_ingested_total",
			Help:      "Incidents upserted from hazard feeds by source.",
		}, []string{"source"}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safesignal",
			Name:      "pipeline_runs_total",
			Help:      "Feed poll cycles by source and outcome.",
		}, []string{"source", "status"}),
		pipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "safesignal",
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of a complete fetch-parse-store cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		reportsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safesignal",
			Name:      "reports_created_total",
			Help:      "Community reports accepted by type.",
		}, []string{"type"}),
		riskCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safesignal",
			Name:      "risk_cache_lookups_total",
			Help:      "Country risk cache lookups by result.",
		}, []string{"result"}),
		dbConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "safesignal",
			Name:      "db_connections_active",
			Help:      "Active database pool connections.",
		}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safesignal",
			Name:      "db_queries_total",
			Help:      "Database queries by operation and status.",
		}, []string{"operation", "status"}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.assessments,
		m.incidentsIngest,
		m.pipelineRuns,
		m.pipelineDuration,
		m.reportsCreated,
		m.riskCacheLookups,
		m.dbConnections,
		m.dbQueries,
	)

	return m
}

func (m *PrometheusMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordAssessment(label, coverage string) {
	m.assessments.WithLabelValues(label, coverage).Inc()
}

func (m *PrometheusMetrics) RecordIncidentsIngested(source string, count int) {
	m.incidentsIngest.WithLabelValues(source).Add(float64(count))
}

func (m *PrometheusMetrics) RecordPipelineRun(source, status string, duration time.Duration) {
	m.pipelineRuns.WithLabelValues(source, status).Inc()
	m.pipelineDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordReportCreated(reportType string) {
	m.reportsCreated.WithLabelValues(reportType).Inc()
}

func (m *PrometheusMetrics) RecordRiskCacheLookup(result string) {
	m.riskCacheLookups.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) SetDBConnectionsActive(count float64) {
	m.dbConnections.Set(count)
}

func (m *PrometheusMetrics) RecordDBQuery(operation, status string) {
	m.dbQueries.WithLabelValues(operation, status).Inc()
}

func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init installs the Prometheus implementation as the global instance.
func Init() {
	globalMetrics = NewPrometheusMetrics()
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordAssessment records a computed safety assessment
func RecordAssessment(label, coverage string) {
	globalMetrics.RecordAssessment(label, coverage)
}

// RecordIncidentsIngested records incidents upserted from a feed poll
func RecordIncidentsIngested(source string, count int) {
	globalMetrics.RecordIncidentsIngested(source, count)
}

// RecordPipelineRun records a feed poll cycle
func RecordPipelineRun(source, status string, duration time.Duration) {
	globalMetrics.RecordPipelineRun(source, status, duration)
}

// RecordReportCreated records an accepted community report
func RecordReportCreated(reportType string) {
	globalMetrics.RecordReportCreated(reportType)
}

// RecordRiskCacheLookup records a country risk cache hit or miss
func RecordRiskCacheLookup(result string) {
	globalMetrics.RecordRiskCacheLookup(result)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	globalMetrics.SetDBConnectionsActive(count)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	globalMetrics.RecordDBQuery(operation, status)
}
