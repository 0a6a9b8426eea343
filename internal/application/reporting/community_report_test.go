package reporting

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/analytics"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/testutil"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) Store(ctx context.Context, r *analytics.Report) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

type ReportServiceSuite struct {
	suite.Suite

	families    *testutil.MockFamilyRepository
	members     *testutil.MockMemberRepository
	visits      *testutil.MockVisitRepository
	reflections *testutil.MockReflectionRepository
	archiver    *mockArchiver
	logger      *testutil.MockLogger
	svc         Service

	family *family.Family
	adult  *member.Member
	child  *member.Member
}

func (s *ReportServiceSuite) SetupTest() {
	s.families = new(testutil.MockFamilyRepository)
	s.members = new(testutil.MockMemberRepository)
	s.visits = new(testutil.MockVisitRepository)
	s.reflections = new(testutil.MockReflectionRepository)
	s.archiver = new(mockArchiver)
	s.logger = testutil.NewMockLogger()
	s.svc = NewService(s.families, s.members, s.visits, s.reflections, s.archiver, nil, s.logger, Config{FetchTimeout: time.Second})

	s.family = &family.Family{ID: "f1", StudentID: "stu-1"}
	s.adult = &member.Member{ID: "a1", FamilyID: "f1", Age: 45, Gender: common.GenderMale}
	s.child = &member.Member{ID: "c1", FamilyID: "f1", Age: 3, Gender: common.GenderFemale}
}

func (s *ReportServiceSuite) ncdVisit() *visit.Visit {
	return &visit.Visit{
		ID:       "v1",
		FamilyID: "f1",
		Date:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Data: scoring.Answers{
			visit.KeyProtocol:     string(assessment.FormNCDScreening),
			visit.KeyMemberID:     "a1",
			scoring.FieldSystolic: 150,
			scoring.FieldRBS:      210,
		},
	}
}

func (s *ReportServiceSuite) TestGenerate_Complete() {
	ctx := context.Background()
	s.families.On("FindByStudentID", mock.Anything, "stu-1").Return([]*family.Family{s.family}, nil)
	s.members.On("FindByFamilyIDs", mock.Anything, []string{"f1"}).Return([]*member.Member{s.adult, s.child}, nil)
	s.visits.On("FindByFamilyIDs", mock.Anything, []string{"f1"}).Return([]*visit.Visit{s.ncdVisit()}, nil)
	s.reflections.On("CountByStudentID", mock.Anything, "stu-1").Return(4, nil)

	r, err := s.svc.Generate(ctx, "stu-1")
	s.Require().NoError(err)
	s.Empty(r.DegradedSections)
	s.Equal(1, r.Demographics.TotalFamilies)
	s.Equal(2, r.Demographics.TotalMembers)
	s.Equal(1, r.Morbidity[analytics.CategoryHypertensionScreened])
	s.Equal(1, r.Morbidity[analytics.CategoryDiabetesScreened])
	s.Equal(analytics.ChildHealth{TotalUnder5: 1}, r.Child)
	s.Equal(analytics.Logbook{TotalVisits: 1, TotalReflections: 4}, r.Logbook)
	s.True(s.logger.HasMessage("info", "report generated"))
}

func (s *ReportServiceSuite) TestGenerate_StampsGenerationTime() {
	at := time.Date(2024, 7, 1, 9, 30, 0, 0, time.FixedZone("IST", 19800))
	s.svc.(*serviceImpl).now = func() time.Time { return at }
	s.families.On("FindByStudentID", mock.Anything, "stu-1").Return([]*family.Family{}, nil)
	s.reflections.On("CountByStudentID", mock.Anything, "stu-1").Return(0, nil)

	r, err := s.svc.Generate(context.Background(), "stu-1")
	s.Require().NoError(err)
	s.Equal(at.UTC(), r.GeneratedAt)
	s.Equal(time.UTC, r.GeneratedAt.Location())
}

func (s *ReportServiceSuite) TestGenerate_FamiliesUnresolved() {
	s.families.On("FindByStudentID", mock.Anything, "stu-1").Return(nil, stderrors.New("connection refused"))

	r, err := s.svc.Generate(context.Background(), "stu-1")
	s.Nil(r)
	s.True(errors.IsCode(err, errors.ErrCodeFamilySetUnresolved))
	s.members.AssertNotCalled(s.T(), "FindByFamilyIDs", mock.Anything, mock.Anything)
}

func (s *ReportServiceSuite) TestGenerate_MemberFailureDegrades() {
	s.families.On("FindByStudentID", mock.Anything, "stu-1").Return([]*family.Family{s.family}, nil)
	s.members.On("FindByFamilyIDs", mock.Anything, []string{"f1"}).Return(nil, stderrors.New("timeout"))
	s.visits.On("FindByFamilyIDs", mock.Anything, []string{"f1"}).Return([]*visit.Visit{s.ncdVisit()}, nil)
	s.reflections.On("CountByStudentID", mock.Anything, "stu-1").Return(1, nil)

	r, err := s.svc.Generate(context.Background(), "stu-1")
	s.Require().NoError(err)
	s.Equal([]string{
		analytics.SectionDemographics,
		analytics.SectionMaternal,
		analytics.SectionChild,
		analytics.SectionMorbidity,
	}, r.DegradedSections)
	s.Equal(1, r.Demographics.TotalFamilies)
	s.Zero(r.Demographics.TotalMembers)
	s.Empty(r.Morbidity)
	s.Equal(analytics.Logbook{TotalVisits: 1, TotalReflections: 1}, r.Logbook)
	s.Equal(1, s.logger.CountLevel("warn"))
}

func (s *ReportServiceSuite) TestGenerate_VisitAndReflectionFailuresDegrade() {
	s.families.On("FindByStudentID", mock.Anything, "stu-1").Return([]*family.Family{s.family}, nil)
	s.members.On("FindByFamilyIDs", mock.Anything, []string{"f1"}).Return([]*member.Member{s.adult}, nil)
	s.visits.On("FindByFamilyIDs", mock.Anything, []string{"f1"}).Return(nil, stderrors.New("timeout"))
	s.reflections.On("CountByStudentID", mock.Anything, "stu-1").Return(0, stderrors.New("timeout"))

	r, err := s.svc.Generate(context.Background(), "stu-1")
	s.Require().NoError(err)
	s.Contains(r.DegradedSections, analytics.SectionSocioEconomic)
	s.Contains(r.DegradedSections, analytics.SectionLogbook)
	s.NotContains(r.DegradedSections, analytics.SectionDemographics)
	s.Equal(1, r.Demographics.TotalMembers)
	s.Len(r.SocioEconomic.Counts, len(scoring.SocioEconomicClasses))
	s.Equal(analytics.Logbook{}, r.Logbook)
}

func (s *ReportServiceSuite) TestGenerate_NoFamiliesSkipsScopedFetches() {
	s.families.On("FindByStudentID", mock.Anything, "stu-1").Return([]*family.Family{}, nil)
	s.reflections.On("CountByStudentID", mock.Anything, "stu-1").Return(2, nil)

	r, err := s.svc.Generate(context.Background(), "stu-1")
	s.Require().NoError(err)
	s.Zero(r.Demographics.TotalFamilies)
	s.Equal(2, r.Logbook.TotalReflections)
	s.visits.AssertNotCalled(s.T(), "FindByFamilyIDs", mock.Anything, mock.Anything)
}

func (s *ReportServiceSuite) TestGenerate_EmptyStudent() {
	_, err := s.svc.Generate(context.Background(), "")
	s.True(errors.IsValidation(err))
}

func (s *ReportServiceSuite) TestArchive() {
	s.families.On("FindByStudentID", mock.Anything, "stu-1").Return([]*family.Family{}, nil)
	s.reflections.On("CountByStudentID", mock.Anything, "stu-1").Return(0, nil)
	s.archiver.On("Store", mock.Anything, mock.AnythingOfType("*analytics.Report")).Return("reports/stu-1/x.json", nil).Once()

	res, err := s.svc.Archive(context.Background(), "stu-1")
	s.Require().NoError(err)
	s.Equal("reports/stu-1/x.json", res.Key)
	s.Equal("stu-1", res.Report.StudentID)

	s.archiver.On("Store", mock.Anything, mock.Anything).Return("", stderrors.New("bucket missing"))
	_, err = s.svc.Archive(context.Background(), "stu-1")
	s.True(errors.IsCode(err, errors.ErrCodeReportArchiveFailed))
}

func TestReportServiceSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func TestArchive_Disabled(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, nil, nil, nil, nil, testutil.NewMockLogger(), Config{})
	_, err := svc.Archive(context.Background(), "stu-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportArchiveDisabled))
}
