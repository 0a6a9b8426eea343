package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

const visitColumns = `id, family_id, visit_date, activity_type, notes, data, created_at`

type postgresVisitRepo struct {
	executor queryExecutor
	log      logging.Logger
}

// NewPostgresVisitRepo returns a visit.Repository backed by conn. Visits are
// append-only.
func NewPostgresVisitRepo(conn *postgres.Connection, log logging.Logger) visit.Repository {
	return &postgresVisitRepo{executor: conn.DB(), log: log}
}

func (r *postgresVisitRepo) Save(ctx context.Context, v *visit.Visit) error {
	data, err := toJSON(v.Data)
	if err != nil {
		return err
	}
	_, err = r.executor.ExecContext(ctx, `
		INSERT INTO visits (`+visitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.FamilyID, v.Date, v.ActivityType, v.Notes, data, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, errors.ErrCodeConflict, "visit already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save visit")
	}
	r.log.Debug("visit stored", logging.FamilyID(v.FamilyID), logging.String("protocol", string(v.Protocol())))
	return nil
}

func (r *postgresVisitRepo) FindByID(ctx context.Context, id string) (*visit.Visit, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id)
	v, err := scanVisit(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("visit " + id + " not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load visit")
	}
	return v, nil
}

// FindByFamilyIDs returns visits newest first. Same-day visits keep their
// insertion order.
func (r *postgresVisitRepo) FindByFamilyIDs(ctx context.Context, familyIDs []string) ([]*visit.Visit, error) {
	if len(familyIDs) == 0 {
		return nil, nil
	}
	rows, err := r.executor.QueryContext(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE family_id = ANY($1) ORDER BY visit_date DESC, created_at`, familyIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list visits")
	}
	defer rows.Close()

	var out []*visit.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan visit")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate visits")
	}
	return out, nil
}

func scanVisit(s scanner) (*visit.Visit, error) {
	var (
		v    visit.Visit
		data []byte
	)
	if err := s.Scan(&v.ID, &v.FamilyID, &v.Date, &v.ActivityType, &v.Notes, &data, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.Data = scoring.Answers{}
	if err := fromJSON(data, &v.Data); err != nil {
		return nil, err
	}
	return &v, nil
}
