// Package migrations embeds the schema for both SQL backends and applies it
// with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationsFS embed.FS

// RunPostgres applies all pending postgres migrations on db.
func RunPostgres(db *sql.DB, logger *slog.Logger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	err = run("postgres", driver, logger)
	// Releases the dedicated connection; db itself stays open.
	if cerr := driver.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close postgres migration driver: %w", cerr)
	}
	return err
}

// RunSQLite applies all pending sqlite migrations on db. The driver is not
// closed since closing it would close db.
func RunSQLite(db *sql.DB, logger *slog.Logger) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}
	return run("sqlite", driver, logger)
}

func run(dir string, driver database.Driver, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dir, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.", slog.String("backend", dir))
	} else {
		logger.Info("Database migrations applied successfully.", slog.String("backend", dir))
	}
	return nil
}
