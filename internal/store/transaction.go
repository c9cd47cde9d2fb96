package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/querybench/querybench/internal/platform/logger"
)

// Beginner starts transaction scopes on a single connection. Implemented
// by *pgx.Conn. Scopes are not nested; one connection carries at most one
// open scope at a time.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ScopeFn is a function that executes within a transaction scope. The
// scope is committed if the function returns nil, or rolled back if it
// returns an error.
type ScopeFn func(ctx context.Context, tx pgx.Tx) error

// RunInScope executes the given function within a transaction scope on
// conn. Every exit path (error return, panic, context cancellation
// surfacing as a statement error) leaves the scope either committed or
// rolled back before RunInScope returns, so the connection is never
// handed back with an open scope.
func RunInScope(ctx context.Context, conn Beginner, fn ScopeFn) error {
	log := logger.FromContext(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		log.Error("failed to begin scope",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin scope: %w", err)
	}

	// Rollback must still reach the server when ctx itself is the reason
	// the scope failed.
	rbCtx := context.WithoutCancel(ctx)

	// Roll back on panic, then re-panic.
	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(rbCtx); txErr != nil {
				log.Error("failed to roll back scope after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back scope after panic",
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	err = fn(ctx, tx)
	if err != nil {
		if rollbackErr := tx.Rollback(rbCtx); rollbackErr != nil {
			log.Error("failed to roll back scope",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back scope: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back scope due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// pgx rolls the transaction back itself when commit is impossible;
		// the database is left in its pre-scope state either way.
		log.Error("failed to commit scope",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit scope: %w", err)
	}

	log.Debug("scope committed")
	return nil
}
