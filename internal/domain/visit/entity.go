// Package visit models home visits and projects their free-form payloads
// into typed per-protocol records.
package visit

import (
	"strings"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Payload keys that are not form answers.
const (
	KeyProtocol = "protocol"
	KeyMemberID = assessment.FieldMemberID
)

// Visit is an immutable home visit record. Data holds the protocol tag, the
// optional member reference and the protocol answers.
type Visit struct {
	ID           string          `json:"id"`
	FamilyID     string          `json:"family_id"`
	Date         time.Time       `json:"date"`
	Notes        string          `json:"notes,omitempty"`
	ActivityType string          `json:"activity_type,omitempty"`
	Data         scoring.Answers `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewVisit builds a visit. An empty protocol is a plain visit; an empty
// memberID is a general family visit.
func NewVisit(familyID string, date time.Time, activityType, notes string, protocol assessment.FormID, memberID string, answers scoring.Answers) (*Visit, error) {
	data := answers.Clone()
	delete(data, KeyProtocol)
	delete(data, KeyMemberID)
	if protocol != "" {
		data[KeyProtocol] = string(protocol)
	}
	if memberID = strings.TrimSpace(memberID); memberID != "" {
		data[KeyMemberID] = memberID
	}
	v := &Visit{
		ID:           string(common.NewID()),
		FamilyID:     strings.TrimSpace(familyID),
		Date:         date.UTC(),
		Notes:        notes,
		ActivityType: strings.TrimSpace(activityType),
		Data:         data,
		CreatedAt:    time.Now().UTC(),
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the entity invariants.
func (v *Visit) Validate() error {
	if v.ID == "" {
		return errors.New(errors.ErrCodeVisitInvalid, "visit id cannot be empty")
	}
	if v.FamilyID == "" {
		return errors.New(errors.ErrCodeVisitInvalid, "family id cannot be empty")
	}
	if v.Date.IsZero() {
		return errors.New(errors.ErrCodeVisitInvalid, "visit date is required")
	}
	return nil
}

// Protocol returns the form id tagged in the payload, or "" for a plain visit.
func (v *Visit) Protocol() assessment.FormID {
	return assessment.FormID(v.Data.String(KeyProtocol))
}

// MemberID returns the referenced member, or "" for a general family visit.
func (v *Visit) MemberID() string {
	return v.Data.String(KeyMemberID)
}

// Answers returns the payload without the protocol tag and member reference.
func (v *Visit) Answers() scoring.Answers {
	a := v.Data.Clone()
	delete(a, KeyProtocol)
	delete(a, KeyMemberID)
	return a
}
