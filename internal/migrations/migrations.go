// Package migrations applies the versioned SQL schema embedded in sql/.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
)

//go:embed sql/*.sql
var files embed.FS

// Runner wraps a golang-migrate instance over the embedded files.
type Runner struct {
	m *migrate.Migrate
}

// NewRunner opens a dedicated connection pool on dsn. Close releases it.
func NewRunner(dsn string) (*Runner, error) {
	// "postgres" is registered by lib/pq, imported by the migrate driver.
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration db: %w", err)
	}
	return newRunner(db)
}

func newRunner(db *sql.DB) (*Runner, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Runner{m: m}, nil
}

// Up applies every pending migration. Being already current is not an error.
func (r *Runner) Up() error {
	err := r.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logging.Info().Msg("schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	r.logVersion()
	return nil
}

// Down rolls back a single migration.
func (r *Runner) Down() error {
	err := r.m.Steps(-1)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	r.logVersion()
	return nil
}

// Version reports the applied version and whether the last run left it dirty.
func (r *Runner) Version() (uint, bool, error) {
	v, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the source and the connection pool.
func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (r *Runner) logVersion() {
	v, dirty, err := r.Version()
	if err != nil {
		logging.Warn().Err(err).Msg("read schema version")
		return
	}
	logging.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema migrated")
}

// Names lists the embedded up migrations in apply order.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
