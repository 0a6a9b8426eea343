package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/analytics"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/calculator"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/evaluation"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/reporting"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/visitlog"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Service mocks
// ─────────────────────────────────────────────────────────────────────────────

type MockCalculator struct{ mock.Mock }

func (m *MockCalculator) Score(ctx context.Context, instrument string, answers scoring.Answers) (scoring.Result, error) {
	args := m.Called(ctx, instrument, answers)
	return args.Get(0).(scoring.Result), args.Error(1)
}

func (m *MockCalculator) Calculate(ctx context.Context, form string, answers scoring.Answers) (assessment.Results, error) {
	args := m.Called(ctx, form, answers)
	res, _ := args.Get(0).(assessment.Results)
	return res, args.Error(1)
}

func (m *MockCalculator) Instruments() []calculator.InstrumentInfo {
	return m.Called().Get(0).([]calculator.InstrumentInfo)
}

func (m *MockCalculator) Forms() []assessment.Schema {
	return m.Called().Get(0).([]assessment.Schema)
}

func (m *MockCalculator) Form(id string) (assessment.Schema, error) {
	args := m.Called(id)
	return args.Get(0).(assessment.Schema), args.Error(1)
}

type MockEvaluation struct{ mock.Mock }

func (m *MockEvaluation) Start(ctx context.Context, form assessment.FormID) (*evaluation.Session, error) {
	args := m.Called(ctx, form)
	s, _ := args.Get(0).(*evaluation.Session)
	return s, args.Error(1)
}

func (m *MockEvaluation) Get(ctx context.Context, id string) (*evaluation.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*evaluation.Session)
	return s, args.Error(1)
}

func (m *MockEvaluation) Evaluate(ctx context.Context, id string, form assessment.FormID, changes scoring.Answers) (*evaluation.Evaluation, error) {
	args := m.Called(ctx, id, form, changes)
	e, _ := args.Get(0).(*evaluation.Evaluation)
	return e, args.Error(1)
}

func (m *MockEvaluation) Save(ctx context.Context, id string, in evaluation.SaveInput) (*evaluation.Submission, error) {
	args := m.Called(ctx, id, in)
	s, _ := args.Get(0).(*evaluation.Submission)
	return s, args.Error(1)
}

type MockVisitLog struct{ mock.Mock }

func (m *MockVisitLog) LogVisit(ctx context.Context, in *visitlog.LogVisitInput) (*visit.Visit, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*visit.Visit)
	return v, args.Error(1)
}

func (m *MockVisitLog) ListByFamily(ctx context.Context, familyID string) ([]visit.Record, error) {
	args := m.Called(ctx, familyID)
	r, _ := args.Get(0).([]visit.Record)
	return r, args.Error(1)
}

type MockReporting struct{ mock.Mock }

func (m *MockReporting) Generate(ctx context.Context, studentID string) (*analytics.Report, error) {
	args := m.Called(ctx, studentID)
	r, _ := args.Get(0).(*analytics.Report)
	return r, args.Error(1)
}

func (m *MockReporting) Archive(ctx context.Context, studentID string) (*reporting.ArchiveResult, error) {
	args := m.Called(ctx, studentID)
	r, _ := args.Get(0).(*reporting.ArchiveResult)
	return r, args.Error(1)
}

var (
	_ calculator.Service = (*MockCalculator)(nil)
	_ evaluation.Service = (*MockEvaluation)(nil)
	_ visitlog.Service   = (*MockVisitLog)(nil)
	_ reporting.Service  = (*MockReporting)(nil)
)

// ─────────────────────────────────────────────────────────────────────────────
// Request helpers
// ─────────────────────────────────────────────────────────────────────────────

// serve mounts h on pattern so chi URL params resolve, then sends one request.
func serve(t *testing.T, method, pattern, target string, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) common.APIResponse[T] {
	t.Helper()
	var env common.APIResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
