// Package migrations carries the bootstrap DDL for the users table.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/rudderlabs/rudder-go-kit/logger"
)

//go:embed sql/*.sql
var FS embed.FS

// Up applies every pending migration. dsn must be a postgres:// URL; the
// migrator opens and closes its own connection.
func Up(dsn string, log logger.Logger) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Infon("Migrations already applied")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.Infon("Migrations applied",
		logger.NewIntField("version", int64(version)),
		logger.NewBoolField("dirty", dirty),
	)
	return nil
}

// Down reverts every applied migration.
func Down(dsn string, log logger.Logger) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("revert migrations: %w", err)
	}
	return nil
}

func newMigrate(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(FS, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate, log logger.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		log.Warnn("Closing migrator", logger.NewErrorField(errors.Join(srcErr, dbErr)))
	}
}
