// Package family models an adopted household.
package family

import (
	"strings"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Family is a household adopted by a student. Attributes carries the
// household profile form answers.
type Family struct {
	ID         string          `json:"id"`
	StudentID  string          `json:"student_id"`
	Name       string          `json:"name"`
	Attributes common.Metadata `json:"attributes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewFamily registers a household for a student.
func NewFamily(studentID, name string, attrs common.Metadata) (*Family, error) {
	now := time.Now().UTC()
	f := &Family{
		ID:         string(common.NewID()),
		StudentID:  strings.TrimSpace(studentID),
		Name:       strings.TrimSpace(name),
		Attributes: attrs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if f.Attributes == nil {
		f.Attributes = common.Metadata{}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the entity invariants.
func (f *Family) Validate() error {
	if f.ID == "" {
		return errors.New(errors.ErrCodeFamilyInvalid, "family id cannot be empty")
	}
	if f.StudentID == "" {
		return errors.New(errors.ErrCodeFamilyInvalid, "student id cannot be empty")
	}
	if f.Name == "" {
		return errors.New(errors.ErrCodeFamilyInvalid, "family name cannot be empty")
	}
	if len(f.Name) > 256 {
		return errors.New(errors.ErrCodeFamilyInvalid, "family name cannot be longer than 256 characters")
	}
	return nil
}

// UpdateProfile merges profile answers into the attribute bag.
func (f *Family) UpdateProfile(attrs common.Metadata) {
	if f.Attributes == nil {
		f.Attributes = common.Metadata{}
	}
	for k, v := range attrs {
		f.Attributes[k] = v
	}
	f.UpdatedAt = time.Now().UTC()
}

// IDs returns the identifiers of families in order.
func IDs(families []*Family) []string {
	ids := make([]string, 0, len(families))
	for _, f := range families {
		ids = append(ids, f.ID)
	}
	return ids
}
