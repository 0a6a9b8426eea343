// Package alerting turns logged visits into risk alerts for follow-up.
package alerting

import (
	"context"
	"sort"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Finding sources outside the form dispatcher.
const (
	SourceDispatch      = "dispatch"
	SourceBloodPressure = "blood_pressure"
	SourceBloodSugar    = "blood_sugar"
	SourceMUAC          = "muac"
)

// Publisher sends a domain event to a topic.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Service evaluates logged visits.
type Service interface {
	// HandleVisitLogged publishes and returns an alert when the visit has a
	// finding, and returns nil otherwise.
	HandleVisitLogged(ctx context.Context, ev visit.Logged) (*visit.RiskAlert, error)
}

type serviceImpl struct {
	publisher Publisher
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// NewService builds the alerting service. A nil metrics argument records
// nothing.
func NewService(publisher Publisher, metrics *prometheus.AppMetrics, logger logging.Logger) Service {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return &serviceImpl{publisher: publisher, metrics: metrics, logger: logger.Named("alerting")}
}

func (s *serviceImpl) HandleVisitLogged(ctx context.Context, ev visit.Logged) (*visit.RiskAlert, error) {
	findings := Assess(ev.Protocol, ev.Answers)
	if len(findings) == 0 {
		return nil, nil
	}

	alert := &visit.RiskAlert{
		BaseEvent: common.NewBaseEvent(ev.VisitID),
		VisitID:   ev.VisitID,
		FamilyID:  ev.FamilyID,
		StudentID: ev.StudentID,
		MemberID:  ev.MemberID,
		Protocol:  ev.Protocol,
		Findings:  findings,
	}
	for _, f := range findings {
		if f.Severity.Rank() > alert.Severity.Rank() {
			alert.Severity = f.Severity
		}
		alert.SuicideRisk = alert.SuicideRisk || f.SuicideRisk
	}

	key := ev.MemberID
	if key == "" {
		key = ev.FamilyID
	}
	if err := s.publisher.PublishEvent(ctx, visit.TopicRiskAlert, key, alert); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to publish risk alert")
	}
	s.metrics.RiskAlertsTotal.WithLabelValues(string(alert.Severity)).Inc()
	s.logger.Info("risk alert published",
		logging.String("visit_id", ev.VisitID),
		logging.String("severity", string(alert.Severity)),
		logging.Bool("suicide_risk", alert.SuicideRisk),
		logging.Int("findings", len(findings)))
	return alert, nil
}

// Assess lists the findings in one visit's answers: dispatcher results that
// are Critical or carry a self-harm flag, a Stage 2 blood pressure, a
// diabetic blood sugar and severe acute malnutrition.
func Assess(protocol assessment.FormID, answers scoring.Answers) []visit.Finding {
	var out []visit.Finding

	results := assessment.Dispatch(protocol, answers)
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r := results[k]
		if !r.IsValid() {
			continue
		}
		if r.SuicideRisk || r.Severity == scoring.SeverityCritical {
			out = append(out, finding(SourceDispatch, r))
		}
	}

	if answers.Has(scoring.FieldSystolic) && answers.Has(scoring.FieldDiastolic) {
		bp := scoring.BloodPressure(answers.Measure(scoring.FieldSystolic), answers.Measure(scoring.FieldDiastolic))
		if bp.Category == scoring.BPStage2 || bp.Category == scoring.BPCrisis {
			out = append(out, finding(SourceBloodPressure, bp))
		}
	}
	if answers.Has(scoring.FieldRBS) {
		if rbs := scoring.RandomBloodSugar(answers.Measure(scoring.FieldRBS)); rbs.Category == scoring.RBSDiabetic {
			out = append(out, finding(SourceBloodSugar, rbs))
		}
	}
	if answers.Has(scoring.FieldMUACCm) {
		if muac := scoring.MUAC(answers.Measure(scoring.FieldMUACCm)); muac.Severity == scoring.SeverityCritical {
			out = append(out, finding(SourceMUAC, muac))
		}
	}
	return out
}

func finding(source string, r scoring.Result) visit.Finding {
	return visit.Finding{
		Source:         source,
		Instrument:     r.Instrument,
		Category:       r.Category,
		Severity:       r.Severity,
		Recommendation: r.Recommendation,
		SuicideRisk:    r.SuicideRisk,
	}
}
