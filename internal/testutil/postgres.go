// Package testutil holds helpers shared by DB-backed tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"tripmate/internal/infra"
	"tripmate/migrations"
)

// DSNEnv names the variable holding the test database connection string.
const DSNEnv = "TRIPMATE_TEST_DSN"

// Postgres connects to the test database, applies migrations and truncates
// the given tables. It skips the test when DSNEnv is not set.
func Postgres(t testing.TB, tables ...string) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := infra.NewDB(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := infra.Migrate(ctx, db, migrations.FS); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	for _, table := range tables {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return db
}
