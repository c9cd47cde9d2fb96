// Package testdb provides utilities for integration tests that need a
// real PostgreSQL database. Tests using it skip themselves unless a
// database URL is supplied through the environment, so the unit-test run
// stays self-contained.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/querybench/querybench/internal/platform/postgres"
	"github.com/querybench/querybench/internal/pool"
)

// TestTimeout bounds individual test database operations.
const TestTimeout = 30 * time.Second

// IsIntegrationTestEnvironment returns true if a test database URL is
// configured, indicating that integration tests can run.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns the database URL for tests. It checks
// DATABASE_URL and QUERYBENCH_TEST_DB_URL in that order.
func GetTestDatabaseURL() string {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("QUERYBENCH_TEST_DB_URL")
	}
	return dbURL
}

// SkipUnlessIntegration skips the test when no test database is
// configured.
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if !IsIntegrationTestEnvironment() {
		t.Skip("skipping integration test: DATABASE_URL not set")
	}
}

// Open opens the migration-side database connection and registers its
// cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db, err := postgres.Open(GetTestDatabaseURL())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

// ResetSchema drops and recreates the entity tables, leaving them empty.
func ResetSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	migrator, err := postgres.NewMigrator(db, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, migrator.Reset(ctx), "failed to reset schema")
}

// NewPool builds a connection pool against the test database and
// registers its cleanup.
func NewPool(t *testing.T, cfg pool.Config) *pool.Pool[*pgx.Conn] {
	t.Helper()

	p, err := postgres.NewPool(cfg, GetTestDatabaseURL(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
		defer cancel()
		require.NoError(t, p.Close(ctx))
	})
	return p
}

// SeedDefault resets the schema and seeds the reference population,
// returning the pool the seeding ran through.
func SeedDefault(t *testing.T, db *sql.DB) *pool.Pool[*pgx.Conn] {
	t.Helper()

	ResetSchema(t, db)

	p := NewPool(t, pool.Config{Size: 5, Overflow: 10})

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer p.Release(ctx, h)

	seeder := postgres.NewSeedStore(nil)
	require.NoError(t, seeder.Seed(ctx, h.Conn, postgres.DefaultSeedSpec()))
	return p
}
