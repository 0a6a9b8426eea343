// Package reporting assembles the community health report for a student.
package reporting

import (
	"context"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/analytics"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/reflection"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// Archiver stores report snapshots.
type Archiver interface {
	Store(ctx context.Context, r *analytics.Report) (string, error)
}

// ArchiveResult locates a stored snapshot.
type ArchiveResult struct {
	Key    string            `json:"key"`
	Report *analytics.Report `json:"report"`
}

// Service generates community reports.
type Service interface {
	// Generate builds a fresh report. Only a failure to list the student's
	// families is returned as an error; other fetch failures zero the
	// affected sections and are listed in DegradedSections.
	Generate(ctx context.Context, studentID string) (*analytics.Report, error)

	// Archive generates a report and stores a snapshot of it.
	Archive(ctx context.Context, studentID string) (*ArchiveResult, error)
}

// Config tunes report assembly.
type Config struct {
	// FetchTimeout bounds each upstream fetch. Zero means no extra bound.
	FetchTimeout time.Duration
}

type serviceImpl struct {
	families    family.Repository
	members     member.Repository
	visits      visit.Repository
	reflections reflection.Repository
	archive     Archiver
	metrics     *prometheus.AppMetrics
	logger      logging.Logger
	cfg         Config
	now         func() time.Time
}

// NewService wires the report service. archive may be nil when archiving is
// disabled.
func NewService(
	families family.Repository,
	members member.Repository,
	visits visit.Repository,
	reflections reflection.Repository,
	archive Archiver,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
	cfg Config,
) Service {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	return &serviceImpl{
		families:    families,
		members:     members,
		visits:      visits,
		reflections: reflections,
		archive:     archive,
		metrics:     metrics,
		logger:      logger.Named("reporting"),
		cfg:         cfg,
		now:         time.Now,
	}
}

// sections that depend on each upstream fetch.
var (
	memberSections     = []string{analytics.SectionDemographics, analytics.SectionMaternal, analytics.SectionChild, analytics.SectionMorbidity}
	visitSections      = []string{analytics.SectionMaternal, analytics.SectionChild, analytics.SectionMorbidity, analytics.SectionSocioEconomic, analytics.SectionEnvironmental, analytics.SectionLogbook}
	reflectionSections = []string{analytics.SectionLogbook}
)

func (s *serviceImpl) Generate(ctx context.Context, studentID string) (*analytics.Report, error) {
	if studentID == "" {
		return nil, errors.NewValidation("student id is required")
	}
	start := time.Now()
	log := s.logger.With(logging.StudentID(studentID))

	var in analytics.Input
	degraded := newSectionSet()

	families, err := fetch(ctx, s.cfg.FetchTimeout, func(ctx context.Context) ([]*family.Family, error) {
		return s.families.FindByStudentID(ctx, studentID)
	})
	if err != nil {
		prometheus.RecordReport(s.metrics, time.Since(start), nil, err)
		log.Error("failed to resolve families", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeFamilySetUnresolved, "cannot resolve families for student")
	}
	in.Families = families
	ids := family.IDs(families)

	if len(ids) > 0 {
		in.Members, err = fetch(ctx, s.cfg.FetchTimeout, func(ctx context.Context) ([]*member.Member, error) {
			return s.members.FindByFamilyIDs(ctx, ids)
		})
		if err != nil {
			log.Warn("member fetch failed, degrading sections", logging.Err(err))
			degraded.add(memberSections...)
			in.Members = nil
		}

		visits, err := fetch(ctx, s.cfg.FetchTimeout, func(ctx context.Context) ([]*visit.Visit, error) {
			return s.visits.FindByFamilyIDs(ctx, ids)
		})
		if err != nil {
			log.Warn("visit fetch failed, degrading sections", logging.Err(err))
			degraded.add(visitSections...)
		} else {
			in.Visits = visit.ProjectAll(visits)
		}
	}

	in.ReflectionCount, err = fetch(ctx, s.cfg.FetchTimeout, func(ctx context.Context) (int, error) {
		return s.reflections.CountByStudentID(ctx, studentID)
	})
	if err != nil {
		log.Warn("reflection count failed, degrading logbook", logging.Err(err))
		degraded.add(reflectionSections...)
		in.ReflectionCount = 0
	}

	report := analytics.Aggregate(studentID, in)
	report.GeneratedAt = s.now().UTC()
	zeroSections(report, degraded.list())
	report.DegradedSections = degraded.list()

	elapsed := time.Since(start)
	prometheus.RecordReport(s.metrics, elapsed, report.DegradedSections, nil)
	log.Info("report generated",
		logging.Int("families", len(in.Families)),
		logging.Int("visits", len(in.Visits)),
		logging.Strings("degraded", report.DegradedSections),
		logging.Duration("elapsed", elapsed))
	return report, nil
}

func (s *serviceImpl) Archive(ctx context.Context, studentID string) (*ArchiveResult, error) {
	if s.archive == nil {
		return nil, errors.New(errors.ErrCodeReportArchiveDisabled, "report archive is disabled")
	}
	report, err := s.Generate(ctx, studentID)
	if err != nil {
		return nil, err
	}
	key, err := s.archive.Store(ctx, report)
	if err != nil {
		s.metrics.ReportsArchivedTotal.WithLabelValues("failed").Inc()
		return nil, errors.Wrap(err, errors.ErrCodeReportArchiveFailed, "failed to archive report")
	}
	s.metrics.ReportsArchivedTotal.WithLabelValues("ok").Inc()
	s.logger.Info("report archived", logging.StudentID(studentID), logging.String("key", key))
	return &ArchiveResult{Key: key, Report: report}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func fetch[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// sectionSet keeps insertion order so degraded sections are reported in a
// stable order.
type sectionSet struct {
	seen  map[string]bool
	order []string
}

func newSectionSet() *sectionSet { return &sectionSet{seen: map[string]bool{}} }

func (s *sectionSet) add(names ...string) {
	for _, n := range names {
		if !s.seen[n] {
			s.seen[n] = true
			s.order = append(s.order, n)
		}
	}
}

func (s *sectionSet) list() []string { return s.order }

// zeroSections resets degraded sections. The logbook keeps whichever counter
// was fetched, since its two inputs fail independently.
func zeroSections(r *analytics.Report, sections []string) {
	for _, name := range sections {
		switch name {
		case analytics.SectionDemographics:
			r.Demographics = analytics.Demographics{TotalFamilies: r.Demographics.TotalFamilies}
		case analytics.SectionMaternal:
			r.Maternal = analytics.MaternalHealth{}
		case analytics.SectionChild:
			r.Child = analytics.ChildHealth{}
		case analytics.SectionMorbidity:
			r.Morbidity = analytics.MorbidityProfile{}
		case analytics.SectionSocioEconomic:
			r.SocioEconomic = analytics.ComputeSocioEconomic(nil)
		case analytics.SectionEnvironmental:
			r.Environmental = analytics.EnvironmentalHealth{}
		}
	}
}
