// Package visitlog records home visits and announces them to downstream
// consumers.
package visitlog

import (
	"context"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// Publisher sends a domain event to a topic.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// LogVisitInput describes one visit to record.
type LogVisitInput struct {
	FamilyID     string
	MemberID     string
	Date         time.Time
	ActivityType string
	Notes        string
	Protocol     assessment.FormID
	Answers      scoring.Answers
}

// Service logs visits.
type Service interface {
	LogVisit(ctx context.Context, in *LogVisitInput) (*visit.Visit, error)
	ListByFamily(ctx context.Context, familyID string) ([]visit.Record, error)
}

type serviceImpl struct {
	families  family.Repository
	visits    visit.Repository
	publisher Publisher
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// NewService wires the visit log. publisher may be nil when messaging is
// disabled.
func NewService(families family.Repository, visits visit.Repository, publisher Publisher, metrics *prometheus.AppMetrics, logger logging.Logger) Service {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return &serviceImpl{
		families:  families,
		visits:    visits,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("visitlog"),
	}
}

func (s *serviceImpl) LogVisit(ctx context.Context, in *LogVisitInput) (*visit.Visit, error) {
	if in == nil {
		return nil, errors.NewValidation("visit input is required")
	}
	fam, err := s.families.FindByID(ctx, in.FamilyID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Wrap(err, errors.ErrCodeFamilyNotFound, "family not found")
		}
		return nil, err
	}

	if in.Protocol != "" {
		if err := validatePayload(in); err != nil {
			return nil, err
		}
	}

	v, err := visit.NewVisit(fam.ID, in.Date, in.ActivityType, in.Notes, in.Protocol, in.MemberID, in.Answers)
	if err != nil {
		return nil, err
	}
	if err := s.visits.Save(ctx, v); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save visit")
	}

	protocol := string(v.Protocol())
	if protocol == "" {
		protocol = "general"
	}
	s.metrics.VisitsLoggedTotal.WithLabelValues(protocol).Inc()
	log := s.logger.With(logging.FamilyID(fam.ID), logging.String("visit_id", v.ID), logging.String("protocol", protocol))
	log.Info("visit logged")

	// The visit is stored; a failed announcement is logged, not returned.
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, visit.TopicLogged, v.ID, visit.NewLogged(v, fam.StudentID)); err != nil {
			log.Error("failed to publish visit event", logging.Err(err))
		}
	}
	return v, nil
}

func (s *serviceImpl) ListByFamily(ctx context.Context, familyID string) ([]visit.Record, error) {
	if familyID == "" {
		return nil, errors.NewValidation("family id is required")
	}
	visits, err := s.visits.FindByFamilyIDs(ctx, []string{familyID})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list visits")
	}
	return visit.ProjectAll(visits), nil
}

// validatePayload checks the answers against the protocol's schema. The
// member reference is checked for presence only.
func validatePayload(in *LogVisitInput) error {
	schema, ok := assessment.Lookup(in.Protocol)
	if !ok {
		return errors.Newf(errors.ErrCodeFormNotFound, "unknown protocol %q", in.Protocol)
	}
	answers := in.Answers.Clone()
	if in.MemberID != "" {
		answers[assessment.FieldMemberID] = in.MemberID
	}
	if err := schema.Validate(answers); err != nil {
		return errors.New(errors.ErrCodeVisitPayloadInvalid, "visit payload does not match protocol").WithDetail(err.Error())
	}
	return nil
}
