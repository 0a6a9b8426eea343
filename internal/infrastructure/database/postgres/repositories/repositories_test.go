package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/reflection"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// arrayConverter lets []string arguments through, as the pgx driver does.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v interface{}) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

type RepoTestSuite struct {
	suite.Suite
	db          *sql.DB
	mock        sqlmock.Sqlmock
	families    family.Repository
	members     member.Repository
	visits      visit.Repository
	reflections reflection.Repository
	now         time.Time
}

func (s *RepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	s.Require().NoError(err)

	log := logging.NewNopLogger()
	conn := postgres.NewConnectionWithDB(s.db, log)
	s.families = NewPostgresFamilyRepo(conn, log)
	s.members = NewPostgresMemberRepo(conn, log)
	s.visits = NewPostgresVisitRepo(conn, log)
	s.reflections = NewPostgresReflectionRepo(conn, log)
	s.now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *RepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Families
// ─────────────────────────────────────────────────────────────────────────────

func (s *RepoTestSuite) familyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "name", "attributes", "created_at", "updated_at"})
}

func (s *RepoTestSuite) TestFamily_Save() {
	f, err := family.NewFamily("stu-1", "Sharma", common.Metadata{"village": "Ward 4"})
	s.Require().NoError(err)

	s.mock.ExpectExec("INSERT INTO families").
		WithArgs(f.ID, "stu-1", "Sharma", []byte(`{"village":"Ward 4"}`), f.CreatedAt, f.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.families.Save(context.Background(), f))
}

func (s *RepoTestSuite) TestFamily_FindByID() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM families WHERE id = $1")).
		WithArgs("fam-1").
		WillReturnRows(s.familyRows().AddRow("fam-1", "stu-1", "Sharma", []byte(`{"religion":"Hindu"}`), s.now, s.now))

	f, err := s.families.FindByID(context.Background(), "fam-1")
	s.Require().NoError(err)
	s.Equal("Sharma", f.Name)
	s.Equal("Hindu", f.Attributes["religion"])
}

func (s *RepoTestSuite) TestFamily_FindByID_NotFound() {
	s.mock.ExpectQuery("FROM families").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := s.families.FindByID(context.Background(), "missing")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeFamilyNotFound))
	s.True(pkgerrors.IsNotFound(err))
}

func (s *RepoTestSuite) TestFamily_FindByStudentID() {
	s.mock.ExpectQuery("FROM families WHERE student_id").
		WithArgs("stu-1").
		WillReturnRows(s.familyRows().
			AddRow("fam-1", "stu-1", "Sharma", nil, s.now, s.now).
			AddRow("fam-2", "stu-1", "Khan", []byte(`{}`), s.now, s.now))

	got, err := s.families.FindByStudentID(context.Background(), "stu-1")
	s.Require().NoError(err)
	s.Equal([]string{"fam-1", "fam-2"}, family.IDs(got))
	s.NotNil(got[0].Attributes)
}

func (s *RepoTestSuite) TestFamily_FindByStudentID_Error() {
	s.mock.ExpectQuery("FROM families").WillReturnError(errors.New("connection reset"))

	_, err := s.families.FindByStudentID(context.Background(), "stu-1")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func (s *RepoTestSuite) TestFamily_UpdateAttributes() {
	s.mock.ExpectExec(regexp.QuoteMeta("attributes = attributes || $2::jsonb")).
		WithArgs("fam-1", []byte(`{"income":12000}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.families.UpdateAttributes(context.Background(), "fam-1", common.Metadata{"income": 12000}))

	s.mock.ExpectExec("UPDATE families").WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.families.UpdateAttributes(context.Background(), "gone", common.Metadata{})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeFamilyNotFound))
}

// ─────────────────────────────────────────────────────────────────────────────
// Members
// ─────────────────────────────────────────────────────────────────────────────

func (s *RepoTestSuite) memberRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "family_id", "name", "age", "gender", "relationship",
		"problems", "interventions", "created_at", "updated_at"})
}

func (s *RepoTestSuite) TestMember_Save_Conflict() {
	m, err := member.NewMember("fam-1", "Asha", 34, common.GenderFemale, "Mother")
	s.Require().NoError(err)

	s.mock.ExpectExec("INSERT INTO members").
		WithArgs(m.ID, "fam-1", "Asha", 34, "Female", "Mother", []byte(`[]`), []byte(`[]`), m.CreatedAt, m.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = s.members.Save(context.Background(), m)
	s.True(pkgerrors.IsConflict(err))
}

func (s *RepoTestSuite) TestMember_FindByFamilyIDs() {
	ids := []string{"fam-1", "fam-2"}
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE family_id = ANY($1)")).
		WithArgs(ids).
		WillReturnRows(s.memberRows().
			AddRow("m-1", "fam-1", "Asha", 34, "Female", "Mother",
				[]byte(`[{"title":"Type 2 Diabetes"}]`), []byte(`[{"title":"Diet counselling","type":"education"}]`), s.now, s.now).
			AddRow("m-2", "fam-2", "Ravi", 3, "Male", "Son", nil, nil, s.now, s.now))

	got, err := s.members.FindByFamilyIDs(context.Background(), ids)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(common.GenderFemale, got[0].Gender)
	s.Equal("Type 2 Diabetes", got[0].Problems[0].Title)
	s.Equal(member.InterventionEducation, got[0].Interventions[0].Type)
	s.Empty(got[1].Problems)
	s.NotNil(got[1].Problems)
}

func (s *RepoTestSuite) TestMember_FindByFamilyIDs_Empty() {
	got, err := s.members.FindByFamilyIDs(context.Background(), nil)
	s.NoError(err)
	s.Empty(got)
}

func (s *RepoTestSuite) TestMember_FindByID_NotFound() {
	s.mock.ExpectQuery("FROM members WHERE id").WithArgs("m-x").WillReturnError(sql.ErrNoRows)

	_, err := s.members.FindByID(context.Background(), "m-x")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeMemberNotFound))
}

func (s *RepoTestSuite) TestMember_Update() {
	m := &member.Member{ID: "m-1", FamilyID: "fam-1", Name: "Asha", Age: 35, Gender: common.GenderFemale, UpdatedAt: s.now}
	s.mock.ExpectExec("UPDATE members SET").WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.members.Update(context.Background(), m))

	s.mock.ExpectExec("UPDATE members SET").WillReturnResult(sqlmock.NewResult(0, 0))
	s.True(pkgerrors.IsNotFound(s.members.Update(context.Background(), m)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Visits
// ─────────────────────────────────────────────────────────────────────────────

func (s *RepoTestSuite) visitRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "family_id", "visit_date", "activity_type", "notes", "data", "created_at"})
}

func (s *RepoTestSuite) TestVisit_Save() {
	v, err := visit.NewVisit("fam-1", s.now, "Home visit", "", "ncd_screening", "m-1", scoring.Answers{scoring.FieldSystolic: 150})
	s.Require().NoError(err)

	s.mock.ExpectExec("INSERT INTO visits").
		WithArgs(v.ID, "fam-1", s.now, "Home visit", "", sqlmock.AnyArg(), v.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.visits.Save(context.Background(), v))
}

func (s *RepoTestSuite) TestVisit_Save_Error() {
	v, err := visit.NewVisit("fam-1", s.now, "", "", "", "", nil)
	s.Require().NoError(err)

	s.mock.ExpectExec("INSERT INTO visits").WillReturnError(errors.New("disk full"))
	s.True(pkgerrors.IsCode(s.visits.Save(context.Background(), v), pkgerrors.ErrCodeDatabaseError))
}

func (s *RepoTestSuite) TestVisit_FindByFamilyIDs() {
	s.mock.ExpectQuery("FROM visits WHERE family_id = ANY").
		WithArgs([]string{"fam-1"}).
		WillReturnRows(s.visitRows().
			AddRow("v-1", "fam-1", s.now, "Home visit", "", []byte(`{"protocol":"ncd_screening","member_id":"m-1","systolic":150}`), s.now))

	got, err := s.visits.FindByFamilyIDs(context.Background(), []string{"fam-1"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("m-1", got[0].MemberID())
	sys, ok := got[0].Data.Measure(scoring.FieldSystolic).Value()
	s.True(ok)
	s.Equal(150.0, sys)
}

func (s *RepoTestSuite) TestVisit_FindByID_NotFound() {
	s.mock.ExpectQuery("FROM visits WHERE id").WithArgs("v-x").WillReturnError(sql.ErrNoRows)

	_, err := s.visits.FindByID(context.Background(), "v-x")
	s.True(pkgerrors.IsNotFound(err))
}

func (s *RepoTestSuite) TestVisit_ScanBadJSON() {
	s.mock.ExpectQuery("FROM visits WHERE id").
		WillReturnRows(s.visitRows().AddRow("v-1", "fam-1", s.now, "", "", []byte(`{not json`), s.now))

	_, err := s.visits.FindByID(context.Background(), "v-1")
	s.Error(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Reflections
// ─────────────────────────────────────────────────────────────────────────────

func (s *RepoTestSuite) TestReflection_SaveAndCount() {
	e, err := reflection.NewEntry("stu-1", "", "First visit", "Met the family.")
	s.Require().NoError(err)

	s.mock.ExpectExec("INSERT INTO reflections").
		WithArgs(e.ID, "stu-1", nil, "First visit", "Met the family.", []byte(`{}`), e.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.reflections.Save(context.Background(), e))

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reflections")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	n, err := s.reflections.CountByStudentID(context.Background(), "stu-1")
	s.NoError(err)
	s.Equal(4, n)
}

func (s *RepoTestSuite) TestReflection_CountError() {
	s.mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("timeout"))

	_, err := s.reflections.CountByStudentID(context.Background(), "stu-1")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func TestRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RepoTestSuite))
}
