package member

import "context"

// Repository persists members. Problems and interventions are stored with
// the member row.
type Repository interface {
	Save(ctx context.Context, m *Member) error
	FindByID(ctx context.Context, id string) (*Member, error)
	FindByFamilyIDs(ctx context.Context, familyIDs []string) ([]*Member, error)
	Update(ctx context.Context, m *Member) error
}
