package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

const familyColumns = `id, student_id, name, attributes, created_at, updated_at`

type postgresFamilyRepo struct {
	executor queryExecutor
	log      logging.Logger
}

// NewPostgresFamilyRepo returns a family.Repository backed by conn.
func NewPostgresFamilyRepo(conn *postgres.Connection, log logging.Logger) family.Repository {
	return &postgresFamilyRepo{executor: conn.DB(), log: log}
}

func (r *postgresFamilyRepo) Save(ctx context.Context, f *family.Family) error {
	attrs, err := toJSON(f.Attributes)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO families (` + familyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, attributes = EXCLUDED.attributes, updated_at = EXCLUDED.updated_at
	`
	_, err = r.executor.ExecContext(ctx, query, f.ID, f.StudentID, f.Name, attrs, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save family")
	}
	return nil
}

func (r *postgresFamilyRepo) FindByID(ctx context.Context, id string) (*family.Family, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE id = $1`, id)
	f, err := scanFamily(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf(errors.ErrCodeFamilyNotFound, "family %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load family")
	}
	return f, nil
}

// FindByStudentID lists the families adopted by a student, oldest first.
func (r *postgresFamilyRepo) FindByStudentID(ctx context.Context, studentID string) ([]*family.Family, error) {
	rows, err := r.executor.QueryContext(ctx,
		`SELECT `+familyColumns+` FROM families WHERE student_id = $1 ORDER BY created_at, id`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list families")
	}
	defer rows.Close()

	var out []*family.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan family")
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate families")
	}
	r.log.Debug("families loaded", logging.StudentID(studentID), logging.Int("count", len(out)))
	return out, nil
}

// UpdateAttributes merges attrs into the stored profile with jsonb concatenation.
func (r *postgresFamilyRepo) UpdateAttributes(ctx context.Context, id string, attrs common.Metadata) error {
	raw, err := toJSON(attrs)
	if err != nil {
		return err
	}
	res, err := r.executor.ExecContext(ctx,
		`UPDATE families SET attributes = attributes || $2::jsonb, updated_at = $3 WHERE id = $1`,
		id, raw, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update family attributes")
	}
	return requireAffected(res, errors.Newf(errors.ErrCodeFamilyNotFound, "family %s not found", id))
}

func scanFamily(s scanner) (*family.Family, error) {
	var (
		f     family.Family
		attrs []byte
	)
	if err := s.Scan(&f.ID, &f.StudentID, &f.Name, &attrs, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Attributes = common.Metadata{}
	if err := fromJSON(attrs, &f.Attributes); err != nil {
		return nil, err
	}
	return &f, nil
}
