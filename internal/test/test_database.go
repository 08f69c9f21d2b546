package test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github/chapool/go-batchpay/internal/config"
	dbutil "github/chapool/go-batchpay/internal/util/db"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

const databasePingTimeout = 2 * time.Second

// WithTestDatabase hands a migrated database to closure and truncates it afterwards.
// The test is skipped when the configured postgres is not reachable.
func WithTestDatabase(t *testing.T, closure func(db *sql.DB)) {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), databasePingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Skipping test, database %s:%d is not reachable: %v", cfg.Database.Host, cfg.Database.Port, err)
	}

	if _, err := dbutil.ApplyMigrations(db, cfg.Paths.MigrationsDir); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	truncate := func() {
		if _, err := db.Exec("TRUNCATE TABLE transfer_receipts"); err != nil {
			t.Errorf("Failed to truncate test database: %v", err)
		}
	}

	truncate()
	defer truncate()

	closure(db)
}
