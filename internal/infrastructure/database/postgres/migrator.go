package postgres

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

// migrationRunner is the subset of *migrate.Migrate the Migrator drives.
type migrationRunner interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(v int) error
	Close() (error, error)
}

// newRunner is a variable to allow mocking in tests.
var newRunner = func(sourceURL, dbURL string) (migrationRunner, error) {
	return migrate.New(sourceURL, dbURL)
}

// Migrator applies the SQL files under a migrations directory.
type Migrator struct {
	dbURL     string
	sourceURL string
	logger    logging.Logger
}

// NewMigrator builds a migrator. sourceURL is a golang-migrate source such
// as "file://migrations".
func NewMigrator(dbURL, sourceURL string, log logging.Logger) *Migrator {
	return &Migrator{dbURL: dbURL, sourceURL: sourceURL, logger: log.Named("migrator")}
}

func (m *Migrator) open() (migrationRunner, error) {
	r, err := newRunner(m.sourceURL, m.dbURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to create migrate instance")
	}
	return r, nil
}

// Up applies every pending migration. No pending migrations is not an error.
func (m *Migrator) Up() error {
	r, err := m.open()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to run migrations")
	}
	version, dirty, _ := r.Version()
	m.logger.Info("migrations applied", logging.Int64("version", int64(version)), logging.Bool("dirty", dirty))
	return nil
}

// Down rolls back the given number of migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return apperrors.Newf(apperrors.ErrCodeValidation, "steps must be greater than 0, got %d", steps)
	}
	r, err := m.open()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return apperrors.New(apperrors.ErrCodeDatabaseError, "no migrations to roll back")
		}
		return apperrors.Wrapf(err, apperrors.ErrCodeDatabaseError, "failed to roll back %d step(s)", steps)
	}
	m.logger.Info("migrations rolled back", logging.Int("steps", steps))
	return nil
}

// Version reports the applied version. A fresh database is version 0.
func (m *Migrator) Version() (uint, bool, error) {
	r, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer r.Close()

	version, dirty, err := r.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to read migration version")
	}
	return version, dirty, nil
}

// Force marks the schema as the given version without running anything.
// It is the manual way out of a dirty state.
func (m *Migrator) Force(version int) error {
	r, err := m.open()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Force(version); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeDatabaseError, "failed to force version %d", version)
	}
	return nil
}
