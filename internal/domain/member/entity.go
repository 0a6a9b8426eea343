// Package member models a household member and their diagnosis and
// intervention history.
package member

import (
	"strings"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// InterventionType classifies an intervention delivered to a member.
type InterventionType string

const (
	InterventionEducation InterventionType = "education"
	InterventionReferral  InterventionType = "referral"
	InterventionTreatment InterventionType = "treatment"
	InterventionFollowUp  InterventionType = "follow_up"
	InterventionOther     InterventionType = "other"
)

// ParseInterventionType maps unknown input to InterventionOther.
func ParseInterventionType(s string) InterventionType {
	switch t := InterventionType(strings.ToLower(strings.TrimSpace(s))); t {
	case InterventionEducation, InterventionReferral, InterventionTreatment, InterventionFollowUp:
		return t
	default:
		return InterventionOther
	}
}

// Problem is a diagnosis entry.
type Problem struct {
	Title string     `json:"title"`
	Date  *time.Time `json:"date,omitempty"`
	Notes string     `json:"notes,omitempty"`
}

// Intervention is an action taken for a member.
type Intervention struct {
	Title       string           `json:"title"`
	Type        InterventionType `json:"type"`
	Description string           `json:"description,omitempty"`
}

// Member belongs to exactly one family.
type Member struct {
	ID            string         `json:"id"`
	FamilyID      string         `json:"family_id"`
	Name          string         `json:"name"`
	Age           int            `json:"age"`
	Gender        common.Gender  `json:"gender"`
	Relationship  string         `json:"relationship"`
	Problems      []Problem      `json:"problems"`
	Interventions []Intervention `json:"interventions"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewMember adds a person to a family.
func NewMember(familyID, name string, age int, gender common.Gender, relationship string) (*Member, error) {
	now := time.Now().UTC()
	m := &Member{
		ID:            string(common.NewID()),
		FamilyID:      strings.TrimSpace(familyID),
		Name:          strings.TrimSpace(name),
		Age:           age,
		Gender:        gender,
		Relationship:  strings.TrimSpace(relationship),
		Problems:      []Problem{},
		Interventions: []Intervention{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the entity invariants.
func (m *Member) Validate() error {
	if m.ID == "" {
		return errors.New(errors.ErrCodeMemberInvalid, "member id cannot be empty")
	}
	if m.FamilyID == "" {
		return errors.New(errors.ErrCodeMemberInvalid, "family id cannot be empty")
	}
	if m.Name == "" {
		return errors.New(errors.ErrCodeMemberInvalid, "member name cannot be empty")
	}
	if m.Age < 0 || m.Age > 130 {
		return errors.Newf(errors.ErrCodeMemberInvalid, "age %d out of range", m.Age)
	}
	switch m.Gender {
	case common.GenderMale, common.GenderFemale, common.GenderOther:
	default:
		return errors.New(errors.ErrCodeMemberInvalid, "gender must be Male, Female or Other")
	}
	return nil
}

// AddProblem records a diagnosis.
func (m *Member) AddProblem(p Problem) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return errors.New(errors.ErrCodeMemberInvalid, "problem title cannot be empty")
	}
	m.Problems = append(m.Problems, p)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// AddIntervention records an intervention.
func (m *Member) AddIntervention(i Intervention) error {
	i.Title = strings.TrimSpace(i.Title)
	if i.Title == "" {
		return errors.New(errors.ErrCodeMemberInvalid, "intervention title cannot be empty")
	}
	if i.Type == "" {
		i.Type = InterventionOther
	}
	m.Interventions = append(m.Interventions, i)
	m.UpdatedAt = time.Now().UTC()
	return nil
}
