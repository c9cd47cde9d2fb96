package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/querybench/querybench/internal/pool"
	"github.com/querybench/querybench/internal/store"
)

// Dialer returns a pool.DialFunc that opens one pgx session per call.
// Connection failures (unreachable host, bad credentials, missing
// database) surface as store.ErrConnection; they fail the acquiring
// task only.
func Dialer(url string, logger *slog.Logger) pool.DialFunc[*pgx.Conn] {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "pg_dialer"))

	return func(ctx context.Context) (*pgx.Conn, error) {
		conn, err := pgx.Connect(ctx, url)
		if err != nil {
			log.Error("failed to open database session",
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %v", store.ErrConnection, err)
		}
		log.Debug("database session opened")
		return conn, nil
	}
}

// Closer returns the pool.CloseFunc matching Dialer.
func Closer() pool.CloseFunc[*pgx.Conn] {
	return func(ctx context.Context, conn *pgx.Conn) error {
		return conn.Close(ctx)
	}
}

// NewPool builds a connection pool over pgx sessions to url.
func NewPool(cfg pool.Config, url string, logger *slog.Logger) (*pool.Pool[*pgx.Conn], error) {
	return pool.New(cfg, Dialer(url, logger), Closer())
}
