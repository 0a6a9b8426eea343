package minio

import (
	"context"
	"encoding/json"
	"path"
	"strconv"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/analytics"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/reporting"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

const snapshotTimeLayout = "20060102T150405.000Z"

// ReportArchive writes community reports as JSON snapshots. Snapshots are
// write-only: reports are always regenerated from source data.
type ReportArchive struct {
	client *Client
	prefix string
	logger logging.Logger
}

var _ reporting.Archiver = (*ReportArchive)(nil)

// NewReportArchive stores snapshots under prefix in the client's bucket.
func NewReportArchive(client *Client, prefix string, log logging.Logger) *ReportArchive {
	return &ReportArchive{client: client, prefix: prefix, logger: log.Named("report_archive")}
}

// SnapshotKey is prefix/studentID/<generated-at>.json.
func SnapshotKey(prefix, studentID string, generatedAt time.Time) string {
	return path.Join(prefix, studentID, generatedAt.UTC().Format(snapshotTimeLayout)+".json")
}

// Store uploads r and returns its object key.
func (a *ReportArchive) Store(ctx context.Context, r *analytics.Report) (string, error) {
	if r == nil || r.StudentID == "" {
		return "", errors.NewValidation("report with a student id is required")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}
	generatedAt := r.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	key := SnapshotKey(a.prefix, r.StudentID, generatedAt)

	meta := map[string]string{
		"student-id":        r.StudentID,
		"total-families":    strconv.Itoa(r.Demographics.TotalFamilies),
		"degraded-sections": strconv.Itoa(len(r.DegradedSections)),
	}
	info, err := a.client.PutObject(ctx, key, data, "application/json", meta)
	if err != nil {
		return "", err
	}
	a.logger.Debug("report snapshot stored",
		logging.StudentID(r.StudentID),
		logging.String("key", key),
		logging.Int64("bytes", info.Size))
	return key, nil
}
