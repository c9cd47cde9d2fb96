package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql, which goose requires
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open opens the database/sql connection used for schema migration and
// verifies it with a ping. The benchmark's own traffic does not go
// through this connection; it exists only because goose speaks
// database/sql.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrator is the schema migration collaborator: idempotent drop-all and
// create-all over the embedded goose migrations.
type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMigrator creates a Migrator over db. If logger is nil, a default
// logger will be used.
func NewMigrator(db *sql.DB, logger *slog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return &Migrator{
		db:     db,
		logger: logger.With(slog.String("component", "migrator")),
	}, nil
}

// CreateAll applies all migrations. Running it against an up-to-date
// schema is a no-op.
func (m *Migrator) CreateAll(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	m.logger.Info("schema created")
	return nil
}

// DropAll rolls every migration back. Running it against an empty schema
// is a no-op.
func (m *Migrator) DropAll(ctx context.Context) error {
	if err := goose.ResetContext(ctx, m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	m.logger.Info("schema dropped")
	return nil
}

// Reset drops and recreates the schema, leaving empty entity tables.
func (m *Migrator) Reset(ctx context.Context) error {
	if err := m.DropAll(ctx); err != nil {
		return err
	}
	return m.CreateAll(ctx)
}
