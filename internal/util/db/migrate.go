package db

import (
	"database/sql"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	dialect         = "postgres"
	migrationsTable = "migrations"
)

// Migrations returns the sql-migrate source reading from dir.
func Migrations(dir string) *migrate.FileMigrationSource {
	return &migrate.FileMigrationSource{Dir: dir}
}

// ApplyMigrations runs all pending up migrations found in dir and returns their count.
func ApplyMigrations(db *sql.DB, dir string) (int, error) {
	migrate.SetTable(migrationsTable)

	n, err := migrate.Exec(db, dialect, Migrations(dir), migrate.Up)
	if err != nil {
		return n, errors.Wrapf(err, "failed to apply migrations from %s", dir)
	}

	return n, nil
}

// RollbackMigrations reverts at most max applied migrations, all of them when max is 0.
func RollbackMigrations(db *sql.DB, dir string, max int) (int, error) {
	migrate.SetTable(migrationsTable)

	n, err := migrate.ExecMax(db, dialect, Migrations(dir), migrate.Down, max)
	if err != nil {
		return n, errors.Wrapf(err, "failed to roll back migrations from %s", dir)
	}

	return n, nil
}

// PendingMigrations lists up migrations not yet applied.
func PendingMigrations(db *sql.DB, dir string) ([]string, error) {
	migrate.SetTable(migrationsTable)

	planned, _, err := migrate.PlanMigration(db, dialect, Migrations(dir), migrate.Up, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to plan migrations from %s", dir)
	}

	ids := make([]string, 0, len(planned))
	for _, m := range planned {
		ids = append(ids, m.Id)
	}

	return ids, nil
}
