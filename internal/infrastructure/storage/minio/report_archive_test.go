package minio

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/analytics"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

func TestSnapshotKey(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 30, 15, 250*int(time.Millisecond), time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "community-reports/stu-1/20240305T040015.250Z.json", SnapshotKey("community-reports", "stu-1", ts))
	assert.Equal(t, "stu-1/20240305T040015.250Z.json", SnapshotKey("", "stu-1", ts))
}

func TestReportArchive_Store(t *testing.T) {
	api := new(MockObjectAPI)
	archive := NewReportArchive(NewClientWithAPI(api, "reports", "", logging.NewNopLogger()), "snap", logging.NewNopLogger())

	report := &analytics.Report{
		StudentID:        "stu-1",
		GeneratedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		DegradedSections: []string{"logbook"},
	}
	report.Demographics.TotalFamilies = 4
	wantKey := "snap/stu-1/20240102T030405.000Z.json"

	var stored []byte
	api.On("PutObject", mock.Anything, "reports", wantKey, mock.Anything, mock.Anything, mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "application/json" &&
			o.UserMetadata["student-id"] == "stu-1" &&
			o.UserMetadata["total-families"] == "4" &&
			o.UserMetadata["degraded-sections"] == "1"
	})).Run(func(args mock.Arguments) {
		stored = args.Get(3).([]byte)
	}).Return(minio.UploadInfo{Key: wantKey}, nil)

	key, err := archive.Store(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, wantKey, key)

	var decoded analytics.Report
	require.NoError(t, json.Unmarshal(stored, &decoded))
	assert.Equal(t, "stu-1", decoded.StudentID)
	assert.Equal(t, []string{"logbook"}, decoded.DegradedSections)
	api.AssertExpectations(t)
}

func TestReportArchive_RequiresStudent(t *testing.T) {
	archive := NewReportArchive(NewClientWithAPI(new(MockObjectAPI), "reports", "", logging.NewNopLogger()), "snap", logging.NewNopLogger())
	_, err := archive.Store(context.Background(), &analytics.Report{})
	assert.True(t, apperrors.IsValidation(err))
	_, err = archive.Store(context.Background(), nil)
	assert.True(t, apperrors.IsValidation(err))
}
