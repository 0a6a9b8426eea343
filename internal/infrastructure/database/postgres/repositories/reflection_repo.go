package repositories

import (
	"context"
	"database/sql"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/reflection"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

type postgresReflectionRepo struct {
	executor queryExecutor
	log      logging.Logger
}

// NewPostgresReflectionRepo returns a reflection.Repository backed by conn.
func NewPostgresReflectionRepo(conn *postgres.Connection, log logging.Logger) reflection.Repository {
	return &postgresReflectionRepo{executor: conn.DB(), log: log}
}

func (r *postgresReflectionRepo) Save(ctx context.Context, e *reflection.Entry) error {
	audit := e.Scores
	if audit == nil {
		audit = map[string]scoring.Result{}
	}
	scores, err := toJSON(audit)
	if err != nil {
		return err
	}
	var familyID sql.NullString
	if e.FamilyID != "" {
		familyID = sql.NullString{String: e.FamilyID, Valid: true}
	}
	_, err = r.executor.ExecContext(ctx, `
		INSERT INTO reflections (id, student_id, family_id, title, body, scores, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.StudentID, familyID, e.Title, e.Body, scores, e.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save reflection")
	}
	return nil
}

func (r *postgresReflectionRepo) CountByStudentID(ctx context.Context, studentID string) (int, error) {
	var n int
	err := r.executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reflections WHERE student_id = $1`, studentID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count reflections")
	}
	return n, nil
}
