package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Status is the schema version recorded in schema_migrations. Version 0
// means no migration has been applied.
type Status struct {
	Version uint
	Dirty   bool
}

// Migrator applies the SQL files under migrations/ with golang-migrate.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New opens the file source at dir against an open PostgreSQL handle.
// Closing the Migrator closes db.
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration source %s: %w", dir, err)
	}
	m.Log = migrateLogger{log.Named("migrate")}
	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() (Status, error) {
	return mg.apply("up", mg.m.Up)
}

// Down rolls every migration back.
func (mg *Migrator) Down() (Status, error) {
	return mg.apply("down", mg.m.Down)
}

// Steps moves n migrations forward, or back when n is negative.
func (mg *Migrator) Steps(n int) (Status, error) {
	return mg.apply(fmt.Sprintf("steps %+d", n), func() error { return mg.m.Steps(n) })
}

// Status reads the current version.
func (mg *Migrator) Status() (Status, error) {
	v, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("read migration version: %w", err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// Force records version as applied and clean without running anything,
// which clears the dirty flag left by a failed migration.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing migration version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and the database handle.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// apply runs op and reports the resulting version. ErrNoChange is success.
func (mg *Migrator) apply(op string, run func() error) (Status, error) {
	err := run()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("migrate %s: %w", op, err)
	}
	st, statusErr := mg.Status()
	if statusErr != nil {
		return Status{}, statusErr
	}
	mg.log.Info("Migrations applied",
		zap.String("op", op),
		zap.Bool("changed", err == nil),
		zap.Uint("version", st.Version),
		zap.Bool("dirty", st.Dirty),
	)
	return st, nil
}

// migrateLogger routes golang-migrate's progress lines to zap at debug.
type migrateLogger struct {
	log *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.log.Core().Enabled(zapcore.DebugLevel)
}
