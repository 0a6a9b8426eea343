package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/calculator"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/handlers"
	"github.com/turtacn/FamilyCare-Analytics/internal/interfaces/http/middleware"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

type stubCalculator struct{}

func (stubCalculator) Score(_ context.Context, instrument string, _ scoring.Answers) (scoring.Result, error) {
	return scoring.Result{Instrument: scoring.Instrument(instrument), Category: "Minimal", Severity: scoring.SeverityLow}, nil
}

func (stubCalculator) Calculate(context.Context, string, scoring.Answers) (assessment.Results, error) {
	return assessment.Results{}, nil
}

func (stubCalculator) Instruments() []calculator.InstrumentInfo { return nil }
func (stubCalculator) Forms() []assessment.Schema              { return nil }

func (stubCalculator) Form(id string) (assessment.Schema, error) {
	return assessment.Schema{}, errors.New(errors.ErrCodeFormNotFound, "form "+id+" not found")
}

func newTestRouter() http.Handler {
	log := logging.NewNopLogger()
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = []string{"https://app.example.org"}
	return NewRouter(RouterConfig{
		ScoreHandler:   handlers.NewScoreHandler(stubCalculator{}, log),
		HealthHandler:  handlers.NewHealthHandler("test", nil),
		CORS:           &cors,
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         log,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
	})
}

func TestNewRouter_Routes(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"liveness", http.MethodGet, "/healthz", "", http.StatusOK},
		{"readiness", http.MethodGet, "/readyz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"score", http.MethodPost, "/api/v1/scores/phq9", `{"answers":{}}`, http.StatusOK},
		{"instruments", http.MethodGet, "/api/v1/instruments", "", http.StatusOK},
		{"forms", http.MethodGet, "/api/v1/forms", "", http.StatusOK},
		{"unknown form", http.MethodGet, "/api/v1/forms/vitals", "", http.StatusNotFound},
		{"calculate", http.MethodPost, "/api/v1/forms/phq9/calculate", `{"answers":{}}`, http.StatusOK},
		{"wrong method", http.MethodGet, "/api/v1/scores/phq9", "", http.StatusMethodNotAllowed},
		{"unmounted sessions", http.MethodPost, "/api/v1/sessions/s1/evaluate", "{}", http.StatusNotFound},
		{"unmounted reports", http.MethodGet, "/api/v1/students/s1/report", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scores/phq9", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

type panickingCalculator struct{ stubCalculator }

func (panickingCalculator) Instruments() []calculator.InstrumentInfo { panic("catalog exploded") }

func TestNewRouter_RecoversPanics(t *testing.T) {
	router := NewRouter(RouterConfig{
		ScoreHandler: handlers.NewScoreHandler(panickingCalculator{}, logging.NewNopLogger()),
	})
	require.NotPanics(t, func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/instruments", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestNewRouter_EmptyConfig(t *testing.T) {
	router := NewRouter(RouterConfig{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
