package handlers

import (
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/analytics"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/reporting"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

func newReportHandler() (*ReportHandler, *MockReporting) {
	svc := new(MockReporting)
	return NewReportHandler(svc, logging.NewNopLogger()), svc
}

func TestReportHandler_Get(t *testing.T) {
	tests := []struct {
		name         string
		report       *analytics.Report
		err          error
		wantStatus   int
		wantDegraded string
	}{
		{
			name:       "complete",
			report:     &analytics.Report{StudentID: "stu-1", Demographics: analytics.Demographics{TotalFamilies: 4}},
			wantStatus: http.StatusOK,
		},
		{
			name: "degraded still ok",
			report: &analytics.Report{
				StudentID:        "stu-1",
				Demographics:     analytics.Demographics{TotalFamilies: 4},
				DegradedSections: []string{"maternal_health"},
			},
			wantStatus:   http.StatusOK,
			wantDegraded: "true",
		},
		{
			name:       "family listing failed",
			err:        errors.Wrap(stderrors.New("conn refused"), errors.ErrCodeDatabaseError, "failed to list families"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h, svc := newReportHandler()
			svc.On("Generate", mock.Anything, "stu-1").Return(tc.report, tc.err)

			rec := serve(t, http.MethodGet, "/students/{studentID}/report", "/students/stu-1/report", h.Get, nil)
			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantDegraded, rec.Header().Get("X-Report-Degraded"))
			if tc.report != nil {
				env := decodeEnvelope[analytics.Report](t, rec)
				assert.Equal(t, 4, env.Data.Demographics.TotalFamilies)
				assert.Equal(t, tc.report.DegradedSections, env.Data.DegradedSections)
			}
		})
	}
}

func TestReportHandler_Archive(t *testing.T) {
	h, svc := newReportHandler()
	svc.On("Archive", mock.Anything, "stu-1").Return(&reporting.ArchiveResult{
		Key:    "community-reports/stu-1/20240305T040015.250Z.json",
		Report: &analytics.Report{StudentID: "stu-1", GeneratedAt: time.Now()},
	}, nil)

	rec := serve(t, http.MethodPost, "/students/{studentID}/report/archive", "/students/stu-1/report/archive", h.Archive, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope[reporting.ArchiveResult](t, rec)
	assert.Equal(t, "community-reports/stu-1/20240305T040015.250Z.json", env.Data.Key)
}

func TestReportHandler_Archive_Disabled(t *testing.T) {
	h, svc := newReportHandler()
	svc.On("Archive", mock.Anything, "stu-1").Return(nil, errors.New(errors.ErrCodeReportArchiveDisabled, "report archive is disabled"))

	rec := serve(t, http.MethodPost, "/students/{studentID}/report/archive", "/students/stu-1/report/archive", h.Archive, nil)
	assert.Equal(t, errors.HTTPStatusForCode(errors.ErrCodeReportArchiveDisabled), rec.Code)
}
