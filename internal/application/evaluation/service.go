package evaluation

import (
	"context"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/visitlog"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// SessionStore keeps sessions between requests. Get returns an error with
// code ErrCodeSessionNotFound when the session is absent or expired.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Locker serialises changes to one session.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

// VisitLogger records a saved session as a visit.
type VisitLogger interface {
	LogVisit(ctx context.Context, in *visitlog.LogVisitInput) (*visit.Visit, error)
}

// Evaluation is the outcome of one answer change.
type Evaluation struct {
	Session    *Session `json:"session"`
	Recomputed bool     `json:"recomputed"`
}

// SaveInput attaches a saved session to a family visit. An empty FamilyID
// saves the bundle without logging a visit.
type SaveInput struct {
	FamilyID     string
	Date         time.Time
	ActivityType string
	Notes        string
}

// Submission is the bundle produced by saving a session.
type Submission struct {
	SessionID string             `json:"session_id"`
	Form      assessment.FormID  `json:"form"`
	Answers   scoring.Answers    `json:"answers"`
	Results   assessment.Results `json:"results"`
	Visit     *visit.Visit       `json:"visit,omitempty"`
}

// Service drives evaluation sessions.
type Service interface {
	Start(ctx context.Context, form assessment.FormID) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Evaluate(ctx context.Context, sessionID string, form assessment.FormID, changes scoring.Answers) (*Evaluation, error)
	Save(ctx context.Context, sessionID string, in SaveInput) (*Submission, error)
}

// Config tunes session lifetimes.
type Config struct {
	SessionTTL time.Duration
	LockTTL    time.Duration
}

type serviceImpl struct {
	store   SessionStore
	locker  Locker
	visits  VisitLogger
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	cfg     Config
}

// NewService wires the evaluation service. visits may be nil, in which
// case Save never logs a visit.
func NewService(store SessionStore, locker Locker, visits VisitLogger, metrics *prometheus.AppMetrics, logger logging.Logger, cfg Config) Service {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Second
	}
	return &serviceImpl{
		store:   store,
		locker:  locker,
		visits:  visits,
		metrics: metrics,
		logger:  logger.Named("evaluation"),
		cfg:     cfg,
	}
}

func (s *serviceImpl) Start(ctx context.Context, form assessment.FormID) (*Session, error) {
	if _, ok := assessment.Lookup(form); !ok {
		return nil, errors.Newf(errors.ErrCodeFormNotFound, "unknown form %q", form)
	}
	sess := NewSession(form)
	if err := s.store.Put(ctx, sess, s.cfg.SessionTTL); err != nil {
		return nil, err
	}
	s.logger.Debug("session started", logging.SessionID(sess.ID), logging.FormID(string(form)))
	return sess, nil
}

func (s *serviceImpl) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *serviceImpl) Evaluate(ctx context.Context, sessionID string, form assessment.FormID, changes scoring.Answers) (*Evaluation, error) {
	var out *Evaluation
	err := s.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if form != "" && form != sess.Form {
			return errors.Newf(errors.ErrCodeSessionFormMismatch, "session is for form %q, not %q", sess.Form, form)
		}

		recomputed := sess.Apply(changes)
		if err := s.store.Put(ctx, sess, s.cfg.SessionTTL); err != nil {
			return err
		}

		outcome := "skipped"
		if recomputed {
			outcome = "recomputed"
		}
		s.metrics.EvaluationsTotal.WithLabelValues(string(sess.Form), outcome).Inc()
		out = &Evaluation{Session: sess, Recomputed: recomputed}
		return nil
	})
	return out, err
}

func (s *serviceImpl) Save(ctx context.Context, sessionID string, in SaveInput) (*Submission, error) {
	var out *Submission
	err := s.withLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		sub := &Submission{
			SessionID: sess.ID,
			Form:      sess.Form,
			Answers:   sess.Answers,
			Results:   sess.Results,
		}

		if in.FamilyID != "" {
			if s.visits == nil {
				return errors.New(errors.ErrCodeServiceUnavailable, "visit logging is not configured")
			}
			date := in.Date
			if date.IsZero() {
				date = time.Now().UTC()
			}
			v, err := s.visits.LogVisit(ctx, &visitlog.LogVisitInput{
				FamilyID:     in.FamilyID,
				MemberID:     sess.Answers.String(assessment.FieldMemberID),
				Date:         date,
				ActivityType: in.ActivityType,
				Notes:        in.Notes,
				Protocol:     sess.Form,
				Answers:      sess.Answers,
			})
			if err != nil {
				return err
			}
			sub.Visit = v
		}

		if err := s.store.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to delete saved session", logging.SessionID(sess.ID), logging.Err(err))
		}
		s.logger.Info("session saved",
			logging.SessionID(sess.ID),
			logging.FormID(string(sess.Form)),
			logging.Int("results", len(sess.Results)))
		out = sub
		return nil
	})
	return out, err
}

// withLock runs fn while holding the session lock. A held lock is reported
// as ErrCodeSessionBusy rather than waited on.
func (s *serviceImpl) withLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	if sessionID == "" {
		return errors.NewValidation("session id is required")
	}
	if s.locker == nil {
		return fn(ctx)
	}
	unlock, ok, err := s.locker.TryLock(ctx, "session:"+sessionID, s.cfg.LockTTL)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to lock session")
	}
	if !ok {
		return errors.New(errors.ErrCodeSessionBusy, "session is being updated")
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release session lock", logging.SessionID(sessionID), logging.Err(err))
		}
	}()
	return fn(ctx)
}
