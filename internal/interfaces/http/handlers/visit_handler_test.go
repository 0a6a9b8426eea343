package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/visitlog"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

func newVisitHandler() (*VisitHandler, *MockVisitLog) {
	svc := new(MockVisitLog)
	return NewVisitHandler(svc, logging.NewNopLogger()), svc
}

func TestVisitHandler_Log(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	v, err := visit.NewVisit("f1", date, "anc", "", assessment.FormAntenatalCare, "m2", scoring.Answers{"anc_visits": 3})
	require.NoError(t, err)

	h, svc := newVisitHandler()
	svc.On("LogVisit", mock.Anything, mock.MatchedBy(func(in *visitlog.LogVisitInput) bool {
		return in.FamilyID == "f1" && in.MemberID == "m2" && in.Protocol == assessment.FormAntenatalCare && in.Date.Equal(date)
	})).Return(v, nil)

	rec := serve(t, http.MethodPost, "/families/{familyID}/visits", "/families/f1/visits", h.Log, LogVisitRequest{
		MemberID: "m2",
		Date:     "2024-06-01",
		Protocol: assessment.FormAntenatalCare,
		Answers:  scoring.Answers{"anc_visits": 3},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decodeEnvelope[VisitView](t, rec)
	assert.Equal(t, v.ID, env.Data.ID)
	assert.Equal(t, "m2", env.Data.MemberID)
	assert.Equal(t, "2024-06-01", env.Data.Date)
	assert.Equal(t, assessment.FormAntenatalCare, env.Data.Protocol)
}

func TestVisitHandler_Log_DefaultsDateToToday(t *testing.T) {
	h, svc := newVisitHandler()
	svc.On("LogVisit", mock.Anything, mock.MatchedBy(func(in *visitlog.LogVisitInput) bool {
		return time.Since(in.Date) < time.Minute
	})).Return(nil, errors.NotFound("family f1 not found"))

	rec := serve(t, http.MethodPost, "/families/{familyID}/visits", "/families/f1/visits", h.Log, LogVisitRequest{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestVisitHandler_List(t *testing.T) {
	v, err := visit.NewVisit("f1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "", "", "", "", nil)
	require.NoError(t, err)

	h, svc := newVisitHandler()
	svc.On("ListByFamily", mock.Anything, "f1").Return([]visit.Record{visit.Project(v)}, nil)

	rec := serve(t, http.MethodGet, "/families/{familyID}/visits", "/families/f1/visits", h.List, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	views := decodeEnvelope[[]VisitView](t, rec).Data
	require.Len(t, views, 1)
	assert.Equal(t, "2024-01-02", views[0].Date)
	assert.Empty(t, views[0].MemberID)
}
