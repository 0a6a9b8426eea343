package family

import (
	"context"

	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Repository persists families.
type Repository interface {
	Save(ctx context.Context, f *Family) error
	FindByID(ctx context.Context, id string) (*Family, error)
	FindByStudentID(ctx context.Context, studentID string) ([]*Family, error)
	UpdateAttributes(ctx context.Context, id string, attrs common.Metadata) error
}
