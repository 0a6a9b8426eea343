package prometheus

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppMetrics_Helpers(t *testing.T) {
	t.Parallel()

	c := newTestCollector(t)
	m := NewAppMetrics(c)

	RecordHTTPRequest(m, http.MethodPost, "/api/v1/scores/{instrument}", 200, 10*time.Millisecond)
	RecordScore(m, "phq9", "critical")
	RecordScore(m, "ibw", "")
	RecordReport(m, time.Second, []string{"logbook"}, nil)
	RecordReport(m, time.Second, nil, errors.New("boom"))
	RecordHealth(m, "postgres", true)

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",route="/api/v1/scores/{instrument}",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_scores_total{instrument="phq9",severity="critical"} 1`)
	assert.Contains(t, out, `test_unit_scores_total{instrument="ibw",severity="none"} 1`)
	assert.Contains(t, out, `test_unit_report_degraded_sections_total{section="logbook"} 1`)
	assert.Contains(t, out, `test_unit_report_duration_seconds_count{outcome="degraded"} 1`)
	assert.Contains(t, out, `test_unit_report_duration_seconds_count{outcome="failed"} 1`)
	assert.Contains(t, out, `test_unit_health_check_status{component="postgres"} 1`)
}

func TestNewNoopAppMetrics(t *testing.T) {
	t.Parallel()

	m := NewNoopAppMetrics()
	assert.NotPanics(t, func() {
		RecordHTTPRequest(m, "GET", "/", 500, time.Second)
		RecordScore(m, "bmi", "low")
		RecordReport(m, time.Second, []string{"logbook"}, nil)
		RecordHealth(m, "redis", false)
		m.RiskAlertsTotal.WithLabelValues("critical").Inc()
	})
}
