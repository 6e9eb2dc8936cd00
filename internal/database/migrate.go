package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator applies the SQL files under the migrations directory.
type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(dsn, migrationsPath string) (*Migrator, error) {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. An already current schema is fine.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rolling back migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Version() (uint, bool, error) {
	return m.m.Version()
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// MigrateUp is the startup path: open the migrator, bring the schema
// current, and release both drivers.
func MigrateUp(dsn, migrationsPath string) error {
	m, err := NewMigrator(dsn, migrationsPath)
	if err != nil {
		return err
	}
	return errors.Join(m.Up(), m.Close())
}
