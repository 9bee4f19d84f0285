package records

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migratorDSN rewrites a standard postgres:// URL to the pgx5:// scheme
// golang-migrate's pgx v5 database driver registers itself under.
func migratorDSN(dsn string) string {
	if idx := strings.Index(dsn, "://"); idx >= 0 {
		return "pgx5" + dsn[idx:]
	}
	return dsn
}

// InitSchema idempotently brings the retired_players schema up to date
// using golang-migrate. It is safe to call on every process start (§4.7
// "Schema initialization (idempotent)").
func InitSchema(dsn string) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migratorDSN(dsn))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
