package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"reikningar/internal/core"
)

// schema holds the numbered migrations, applied in filename order.
//
//go:embed migrations/*.sql
var schema embed.FS

const migrationsTable = "schema_migrations"

// Migrate brings the database at dbPath up to the newest embedded schema and
// returns the resulting version. The migration driver closes its connection
// when done, so it never shares the repository's handle.
func Migrate(dbPath string) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration connection: %w", err)
	}

	drv, err := sqlite.WithInstance(conn, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("%w: sqlite migration driver: %v", core.ErrExternalService, err)
	}
	src, err := iofs.New(schema, "migrations")
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("%w: apply migrations: %v", core.ErrExternalService, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w: schema version %d is dirty", core.ErrExternalService, version)
	}
	return version, nil
}
