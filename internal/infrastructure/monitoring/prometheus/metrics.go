package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every application metric.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Scoring
	ScoresTotal      CounterVec
	DispatchTotal    CounterVec
	EvaluationsTotal CounterVec

	// Reports
	ReportDuration       HistogramVec
	ReportDegradedTotal  CounterVec
	ReportsArchivedTotal CounterVec

	// Visits and alerts
	VisitsLoggedTotal      CounterVec
	RiskAlertsTotal        CounterVec
	MessagesProcessedTotal CounterVec

	// System
	HealthCheckStatus GaugeVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultReportDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// NewAppMetrics registers all application metrics on the collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route"),

		ScoresTotal:      c.RegisterCounter("scores_total", "Scores computed by instrument and severity", "instrument", "severity"),
		DispatchTotal:    c.RegisterCounter("dispatch_total", "Form dispatches by form and outcome", "form", "outcome"),
		EvaluationsTotal: c.RegisterCounter("evaluations_total", "Form-reactive evaluations by form and outcome", "form", "outcome"),

		ReportDuration:       c.RegisterHistogram("report_duration_seconds", "Community report assembly duration", DefaultReportDurationBuckets, "outcome"),
		ReportDegradedTotal:  c.RegisterCounter("report_degraded_sections_total", "Report sections zeroed by upstream failures", "section"),
		ReportsArchivedTotal: c.RegisterCounter("reports_archived_total", "Report snapshots written to object storage", "status"),

		VisitsLoggedTotal:      c.RegisterCounter("visits_logged_total", "Visits logged by protocol", "protocol"),
		RiskAlertsTotal:        c.RegisterCounter("risk_alerts_total", "Risk alerts published by severity", "severity"),
		MessagesProcessedTotal: c.RegisterCounter("messages_processed_total", "Consumed messages by topic and status", "topic", "status"),

		HealthCheckStatus: c.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component"),
	}
}

// NewNoopAppMetrics returns metrics that record nothing.
func NewNoopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:      noopCounterVec{},
		HTTPRequestDuration:    noopHistogramVec{},
		ScoresTotal:            noopCounterVec{},
		DispatchTotal:          noopCounterVec{},
		EvaluationsTotal:       noopCounterVec{},
		ReportDuration:         noopHistogramVec{},
		ReportDegradedTotal:    noopCounterVec{},
		ReportsArchivedTotal:   noopCounterVec{},
		VisitsLoggedTotal:      noopCounterVec{},
		RiskAlertsTotal:        noopCounterVec{},
		MessagesProcessedTotal: noopCounterVec{},
		HealthCheckStatus:      noopGaugeVec{},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// RecordHTTPRequest counts one request and observes its latency.
func RecordHTTPRequest(m *AppMetrics, method, route string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordScore counts one score. An empty severity is recorded as "none".
func RecordScore(m *AppMetrics, instrument, severity string) {
	if severity == "" {
		severity = "none"
	}
	m.ScoresTotal.WithLabelValues(instrument, severity).Inc()
}

// RecordReport observes a report generation and counts its degraded
// sections. A non-nil err is counted as a failed generation.
func RecordReport(m *AppMetrics, d time.Duration, degraded []string, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "failed"
	case len(degraded) > 0:
		outcome = "degraded"
	}
	m.ReportDuration.WithLabelValues(outcome).Observe(d.Seconds())
	for _, s := range degraded {
		m.ReportDegradedTotal.WithLabelValues(s).Inc()
	}
}

// RecordHealth sets the up gauge of component to 1 or 0.
func RecordHealth(m *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}
