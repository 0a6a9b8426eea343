// Package app assembles infrastructure and application services from
// configuration. The API server, the risk worker and the CLI share it.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/alerting"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/calculator"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/evaluation"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/reporting"
	"github.com/turtacn/FamilyCare-Analytics/internal/application/visitlog"
	"github.com/turtacn/FamilyCare-Analytics/internal/config"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/family"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/member"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/reflection"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/visit"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/database/redis"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/storage/minio"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// Component selects a piece of infrastructure to open.
type Component int

const (
	Postgres Component = 1 << iota
	Redis
	Messaging
	Archive
)

// All opens every component. Messaging and Archive are still skipped when
// disabled in configuration.
const All = Postgres | Redis | Messaging | Archive

// Infrastructure holds the opened clients. Components that were not
// requested, or are disabled, are nil.
type Infrastructure struct {
	Config    *config.Config
	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	DB       *postgres.Connection
	Redis    *redis.Client
	Producer *kafka.Producer
	Storage  *minio.Client

	closers []func() error
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
	})
}

// NewMetrics registers application metrics. Disabled metrics yield no-op
// recorders and a nil collector.
func NewMetrics(cfg config.MetricsConfig, logger logging.Logger) (*prometheus.AppMetrics, prometheus.MetricsCollector, error) {
	if !cfg.Enabled {
		return prometheus.NewNoopAppMetrics(), nil, nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create metrics collector")
	}
	return prometheus.NewAppMetrics(collector), collector, nil
}

// NewInfrastructure opens the requested components. On failure everything
// opened so far is closed.
func NewInfrastructure(cfg *config.Config, logger logging.Logger, components Component) (*Infrastructure, error) {
	metrics, collector, err := NewMetrics(cfg.Metrics, logger)
	if err != nil {
		return nil, err
	}
	infra := &Infrastructure{Config: cfg, Logger: logger, Metrics: metrics, Collector: collector}

	if components&Postgres != 0 {
		conn, err := postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			return nil, infra.fail(err)
		}
		infra.DB = conn
		infra.closers = append(infra.closers, conn.Close)

		if cfg.Database.AutoMigrate {
			m := postgres.NewMigrator(postgres.BuildDSN(cfg.Database), MigrationSource(cfg.Database), logger)
			if err := m.Up(); err != nil {
				return nil, infra.fail(err)
			}
		}
	}

	if components&Redis != 0 {
		client, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			return nil, infra.fail(err)
		}
		infra.Redis = client
		infra.closers = append(infra.closers, client.Close)
	}

	if components&Messaging != 0 && cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return nil, infra.fail(err)
		}
		infra.Producer = producer
		infra.closers = append(infra.closers, producer.Close)
	}

	if components&Archive != 0 && cfg.Report.ArchiveEnabled {
		client, err := minio.NewClient(cfg.MinIO, logger)
		if err != nil {
			return nil, infra.fail(err)
		}
		infra.Storage = client
		infra.closers = append(infra.closers, client.Close)
	}

	return infra, nil
}

// MigrationSource is the golang-migrate source URL for the configured
// migrations location. A bare directory is treated as file://.
func MigrationSource(cfg config.DatabaseConfig) string {
	p := cfg.MigrationPath
	switch {
	case p == "":
		return config.DefaultDBMigrationPath
	case strings.Contains(p, "://"):
		return p
	default:
		return "file://" + p
	}
}

func (i *Infrastructure) fail(err error) error {
	i.Close()
	return err
}

// Close releases components in reverse opening order.
func (i *Infrastructure) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil {
			i.Logger.Warn("close failed", logging.Err(err))
		}
	}
	i.closers = nil
}

// HealthCheck pings one component.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthChecks lists a ping for every opened component.
func (i *Infrastructure) HealthChecks() []HealthCheck {
	var checks []HealthCheck
	if i.DB != nil {
		checks = append(checks, HealthCheck{Name: "postgres", Check: i.DB.HealthCheck})
	}
	if i.Redis != nil {
		checks = append(checks, HealthCheck{Name: "redis", Check: i.Redis.Ping})
	}
	if i.Storage != nil {
		checks = append(checks, HealthCheck{Name: "minio", Check: i.Storage.HealthCheck})
	}
	return checks
}

// Repositories are the Postgres-backed stores.
type Repositories struct {
	Families    family.Repository
	Members     member.Repository
	Visits      visit.Repository
	Reflections reflection.Repository
}

// Repositories requires the Postgres component.
func (i *Infrastructure) Repositories() Repositories {
	return Repositories{
		Families:    repositories.NewPostgresFamilyRepo(i.DB, i.Logger),
		Members:     repositories.NewPostgresMemberRepo(i.DB, i.Logger),
		Visits:      repositories.NewPostgresVisitRepo(i.DB, i.Logger),
		Reflections: repositories.NewPostgresReflectionRepo(i.DB, i.Logger),
	}
}

// publisher returns the producer as an interface value, or an untyped nil
// when messaging is disabled so services can test it against nil.
func (i *Infrastructure) publisher() visitlog.Publisher {
	if i.Producer == nil {
		return nil
	}
	return i.Producer
}

func (i *Infrastructure) archiver() reporting.Archiver {
	if i.Storage == nil {
		return nil
	}
	return minio.NewReportArchive(i.Storage, i.Config.Report.ArchivePrefix, i.Logger)
}

// Services are the application services.
type Services struct {
	Calculator calculator.Service
	Visits     visitlog.Service
	Evaluation evaluation.Service
	Reports    reporting.Service
}

// NewServices wires the application services over the opened
// infrastructure. Evaluation needs Redis; the others need Postgres.
func NewServices(i *Infrastructure) *Services {
	s := &Services{Calculator: calculator.NewService(i.Metrics, i.Logger)}
	if i.DB == nil {
		return s
	}
	repos := i.Repositories()
	s.Visits = visitlog.NewService(repos.Families, repos.Visits, i.publisher(), i.Metrics, i.Logger)
	s.Reports = reporting.NewService(
		repos.Families, repos.Members, repos.Visits, repos.Reflections,
		i.archiver(), i.Metrics, i.Logger,
		reporting.Config{FetchTimeout: i.Config.Report.FetchTimeout},
	)
	if i.Redis != nil {
		s.Evaluation = evaluation.NewService(
			redis.NewSessionStore(i.Redis, i.Logger),
			redis.NewLocker(i.Redis, i.Logger),
			s.Visits,
			i.Metrics, i.Logger,
			evaluation.Config{SessionTTL: i.Config.Evaluation.SessionTTL, LockTTL: i.Config.Evaluation.LockTTL},
		)
	}
	return s
}

// NewAlerting builds the risk-alert service. It needs the Messaging
// component: alerts exist only as published events.
func NewAlerting(i *Infrastructure) (alerting.Service, error) {
	if i.Producer == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "risk alerting requires kafka to be enabled")
	}
	return alerting.NewService(i.Producer, i.Metrics, i.Logger), nil
}

// ShutdownContext bounds graceful shutdown.
func ShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
