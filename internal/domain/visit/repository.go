package visit

import "context"

// Repository persists visits. Visits are never updated.
type Repository interface {
	Save(ctx context.Context, v *Visit) error
	FindByID(ctx context.Context, id string) (*Visit, error)
	FindByFamilyIDs(ctx context.Context, familyIDs []string) ([]*Visit, error)
}
