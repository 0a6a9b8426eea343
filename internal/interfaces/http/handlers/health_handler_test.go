package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

func okCheck(name string) HealthChecker {
	return NewCheck(name, func(context.Context) error { return nil })
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", nil, NewCheck("db", func(context.Context) error {
		t.Fatal("liveness must not check dependencies")
		return nil
	}))
	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope[LivenessResponse](t, rec)
	assert.Equal(t, "alive", env.Data.Status)
	assert.Equal(t, "1.2.3", env.Data.Version)
}

func TestHealthHandler_Readiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checkers   []HealthChecker
		wantStatus int
		wantBody   string
	}{
		{"no dependencies", nil, http.StatusOK, "ready"},
		{"all healthy", []HealthChecker{okCheck("postgres"), okCheck("redis")}, http.StatusOK, "ready"},
		{
			"one unhealthy",
			[]HealthChecker{okCheck("postgres"), NewCheck("redis", func(context.Context) error { return stderrors.New("dial tcp: refused") })},
			http.StatusServiceUnavailable,
			"not_ready",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := NewHealthHandler("dev", nil, tc.checkers...)
			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			env := decodeEnvelope[ReadinessResponse](t, rec)
			assert.Equal(t, tc.wantBody, env.Data.Status)
			require.Len(t, env.Data.Components, len(tc.checkers))
			for i, c := range tc.checkers {
				assert.Equal(t, c.Name(), env.Data.Components[i].Name)
			}
		})
	}
}

func TestHealthHandler_ReadinessReportsError(t *testing.T) {
	h := NewHealthHandler("dev", nil, NewCheck("minio", func(context.Context) error { return stderrors.New("bucket missing") }))
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	env := decodeEnvelope[ReadinessResponse](t, rec)
	require.Len(t, env.Data.Components, 1)
	assert.Equal(t, common.HealthUnhealthy, env.Data.Components[0].Status)
	assert.Equal(t, "bucket missing", env.Data.Components[0].Error)
}
