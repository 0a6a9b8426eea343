package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/reflection"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// family.Repository
// ─────────────────────────────────────────────────────────────────────────────

// MockFamilyRepository is a testify mock of family.Repository.
type MockFamilyRepository struct{ mock.Mock }

func (m *MockFamilyRepository) Save(ctx context.Context, f *family.Family) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFamilyRepository) FindByID(ctx context.Context, id string) (*family.Family, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*family.Family), args.Error(1)
}

func (m *MockFamilyRepository) FindByStudentID(ctx context.Context, studentID string) ([]*family.Family, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*family.Family), args.Error(1)
}

func (m *MockFamilyRepository) UpdateAttributes(ctx context.Context, id string, attrs common.Metadata) error {
	return m.Called(ctx, id, attrs).Error(0)
}

// ─────────────────────────────────────────────────────────────────────────────
// member.Repository
// ─────────────────────────────────────────────────────────────────────────────

// MockMemberRepository is a testify mock of member.Repository.
type MockMemberRepository struct{ mock.Mock }

func (m *MockMemberRepository) Save(ctx context.Context, mem *member.Member) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id string) (*member.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByFamilyIDs(ctx context.Context, familyIDs []string) ([]*member.Member, error) {
	args := m.Called(ctx, familyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.Member), args.Error(1)
}

func (m *MockMemberRepository) Update(ctx context.Context, mem *member.Member) error {
	return m.Called(ctx, mem).Error(0)
}

// ─────────────────────────────────────────────────────────────────────────────
// visit.Repository
// ─────────────────────────────────────────────────────────────────────────────

// MockVisitRepository is a testify mock of visit.Repository.
type MockVisitRepository struct{ mock.Mock }

func (m *MockVisitRepository) Save(ctx context.Context, v *visit.Visit) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVisitRepository) FindByID(ctx context.Context, id string) (*visit.Visit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.Visit), args.Error(1)
}

func (m *MockVisitRepository) FindByFamilyIDs(ctx context.Context, familyIDs []string) ([]*visit.Visit, error) {
	args := m.Called(ctx, familyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*visit.Visit), args.Error(1)
}

// ─────────────────────────────────────────────────────────────────────────────
// reflection.Repository
// ─────────────────────────────────────────────────────────────────────────────

// MockReflectionRepository is a testify mock of reflection.Repository.
type MockReflectionRepository struct{ mock.Mock }

func (m *MockReflectionRepository) Save(ctx context.Context, e *reflection.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockReflectionRepository) CountByStudentID(ctx context.Context, studentID string) (int, error) {
	args := m.Called(ctx, studentID)
	return args.Int(0), args.Error(1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Event publishing
// ─────────────────────────────────────────────────────────────────────────────

// MockPublisher satisfies the publisher ports of the visit log and the risk
// alert worker.
type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	return m.Called(ctx, topic, key, event).Error(0)
}
