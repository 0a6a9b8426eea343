package visit

import (
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Event topics.
const (
	TopicLogged    = "famcare.visit.logged"
	TopicRiskAlert = "famcare.risk.alert"
)

// Logged is published after a visit is persisted.
type Logged struct {
	common.BaseEvent
	VisitID   string            `json:"visit_id"`
	FamilyID  string            `json:"family_id"`
	StudentID string            `json:"student_id"`
	MemberID  string            `json:"member_id,omitempty"`
	Protocol  assessment.FormID `json:"protocol,omitempty"`
	Date      time.Time         `json:"date"`
	Answers   scoring.Answers   `json:"answers,omitempty"`
}

// NewLogged builds the event for a stored visit.
func NewLogged(v *Visit, studentID string) Logged {
	return Logged{
		BaseEvent: common.NewBaseEvent(v.ID),
		VisitID:   v.ID,
		FamilyID:  v.FamilyID,
		StudentID: studentID,
		MemberID:  v.MemberID(),
		Protocol:  v.Protocol(),
		Date:      v.Date,
		Answers:   v.Answers(),
	}
}

// Finding is one reason a visit raised a risk alert.
type Finding struct {
	Source         string             `json:"source"`
	Instrument     scoring.Instrument `json:"instrument"`
	Category       string             `json:"category"`
	Severity       scoring.Severity   `json:"severity"`
	Recommendation string             `json:"recommendation,omitempty"`
	SuicideRisk    bool               `json:"suicide_risk,omitempty"`
}

// RiskAlert is published when a logged visit contains a finding that needs
// follow-up.
type RiskAlert struct {
	common.BaseEvent
	VisitID     string            `json:"visit_id"`
	FamilyID    string            `json:"family_id"`
	StudentID   string            `json:"student_id"`
	MemberID    string            `json:"member_id,omitempty"`
	Protocol    assessment.FormID `json:"protocol,omitempty"`
	Severity    scoring.Severity  `json:"severity"`
	SuicideRisk bool              `json:"suicide_risk"`
	Findings    []Finding         `json:"findings"`
}
