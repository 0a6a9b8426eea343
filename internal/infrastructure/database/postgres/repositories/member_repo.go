package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

const memberColumns = `id, family_id, name, age, gender, relationship, problems, interventions, created_at, updated_at`

type postgresMemberRepo struct {
	executor queryExecutor
	log      logging.Logger
}

// NewPostgresMemberRepo returns a member.Repository backed by conn.
func NewPostgresMemberRepo(conn *postgres.Connection, log logging.Logger) member.Repository {
	return &postgresMemberRepo{executor: conn.DB(), log: log}
}

func (r *postgresMemberRepo) Save(ctx context.Context, m *member.Member) error {
	problems, interventions, err := memberJSON(m)
	if err != nil {
		return err
	}
	_, err = r.executor.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.FamilyID, m.Name, m.Age, string(m.Gender), m.Relationship, problems, interventions, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, errors.ErrCodeConflict, "member already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save member")
	}
	return nil
}

func (r *postgresMemberRepo) FindByID(ctx context.Context, id string) (*member.Member, error) {
	row := r.executor.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	m, err := scanMember(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf(errors.ErrCodeMemberNotFound, "member %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load member")
	}
	return m, nil
}

// FindByFamilyIDs loads members of all listed families in one round trip.
func (r *postgresMemberRepo) FindByFamilyIDs(ctx context.Context, familyIDs []string) ([]*member.Member, error) {
	if len(familyIDs) == 0 {
		return nil, nil
	}
	rows, err := r.executor.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE family_id = ANY($1) ORDER BY family_id, created_at, id`, familyIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list members")
	}
	defer rows.Close()

	var out []*member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan member")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate members")
	}
	return out, nil
}

func (r *postgresMemberRepo) Update(ctx context.Context, m *member.Member) error {
	problems, interventions, err := memberJSON(m)
	if err != nil {
		return err
	}
	res, err := r.executor.ExecContext(ctx, `
		UPDATE members SET
			name = $2, age = $3, gender = $4, relationship = $5,
			problems = $6, interventions = $7, updated_at = $8
		WHERE id = $1
	`, m.ID, m.Name, m.Age, string(m.Gender), m.Relationship, problems, interventions, m.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update member")
	}
	return requireAffected(res, errors.Newf(errors.ErrCodeMemberNotFound, "member %s not found", m.ID))
}

func memberJSON(m *member.Member) ([]byte, []byte, error) {
	problems := m.Problems
	if problems == nil {
		problems = []member.Problem{}
	}
	interventions := m.Interventions
	if interventions == nil {
		interventions = []member.Intervention{}
	}
	p, err := toJSON(problems)
	if err != nil {
		return nil, nil, err
	}
	i, err := toJSON(interventions)
	if err != nil {
		return nil, nil, err
	}
	return p, i, nil
}

func scanMember(s scanner) (*member.Member, error) {
	var (
		m                       member.Member
		gender                  string
		problems, interventions []byte
	)
	if err := s.Scan(&m.ID, &m.FamilyID, &m.Name, &m.Age, &gender, &m.Relationship,
		&problems, &interventions, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Gender = common.Gender(gender)
	m.Problems = []member.Problem{}
	m.Interventions = []member.Intervention{}
	if err := fromJSON(problems, &m.Problems); err != nil {
		return nil, err
	}
	if err := fromJSON(interventions, &m.Interventions); err != nil {
		return nil, err
	}
	return &m, nil
}
