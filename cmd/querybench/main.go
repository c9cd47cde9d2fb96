// Package main implements the querybench entry point: it resets and
// seeds the benchmark schema, then runs every data-loading strategy at
// every configured concurrency level and logs one report per run.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/querybench/querybench/internal/bench"
	"github.com/querybench/querybench/internal/config"
	"github.com/querybench/querybench/internal/platform/logger"
	"github.com/querybench/querybench/internal/platform/postgres"
	"github.com/querybench/querybench/internal/pool"
	"github.com/querybench/querybench/internal/store"
	"github.com/querybench/querybench/internal/strategy"
)

func main() {
	if err := run(); err != nil {
		slog.Error("querybench failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; configuration then comes from the process
	// environment alone.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Info("configuration loaded",
		slog.Int("pool_size", cfg.Pool.Size),
		slog.Int("pool_overflow", cfg.Pool.Overflow),
		slog.Int("page_size", cfg.Bench.PageSize),
		slog.Int("pages", cfg.Bench.Pages),
		slog.Any("concurrency", cfg.Bench.Concurrency))

	if err := resetAndSeed(ctx, cfg, log); err != nil {
		return err
	}

	p, err := postgres.NewPool(pool.Config{
		Size:     cfg.Pool.Size,
		Overflow: cfg.Pool.Overflow,
	}, cfg.Database.URL, log)
	if err != nil {
		return fmt.Errorf("failed to build connection pool: %w", err)
	}
	defer func() {
		if err := p.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to close pool", slog.String("error", err.Error()))
		}
	}()

	return runMatrix(ctx, cfg, p, log)
}

// resetAndSeed rebuilds the schema and inserts the benchmark population,
// then closes its migration connection; benchmark traffic flows through
// the pool only.
func resetAndSeed(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := postgres.Open(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close migration connection", slog.String("error", err.Error()))
		}
	}()

	migrator, err := postgres.NewMigrator(db, log)
	if err != nil {
		return err
	}
	if err := migrator.Reset(ctx); err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrConnection, err)
	}
	defer func() { _ = conn.Close(context.WithoutCancel(ctx)) }()

	return postgres.NewSeedStore(log).Seed(ctx, conn, postgres.SeedSpec{
		Owners:             cfg.Seed.Owners,
		TasksPerOwner:      cfg.Seed.TasksPerOwner,
		AnnotationsPerTask: cfg.Seed.AnnotationsPerTask,
	})
}

// runMatrix benchmarks every strategy at every concurrency level. Each
// strategy gets one uncounted warm-up page before its first measured run
// so plan caches and pool connections do not bias the first cell.
func runMatrix(ctx context.Context, cfg *config.Config, p *pool.Pool[*pgx.Conn], log *slog.Logger) error {
	runner := bench.NewRunner(log)

	for _, strat := range strategy.All() {
		warmup := postgres.PageWorkload(p, strat, cfg.Bench.PageSize, nil)
		if _, err := warmup(ctx, 0); err != nil {
			return fmt.Errorf("warm-up page failed for %s: %w", strat.Name(), err)
		}
	}

	for _, concurrency := range cfg.Bench.Concurrency {
		for _, strat := range strategy.All() {
			counter := store.NewQueryCounter()
			fetch := postgres.PageWorkload(p, strat, cfg.Bench.PageSize, counter)

			report, err := runner.Run(ctx, fetch, bench.Options{
				Strategy:    strat.Name(),
				Pages:       cfg.Bench.Pages,
				PageSize:    cfg.Bench.PageSize,
				Concurrency: concurrency,
			})
			if err != nil {
				return fmt.Errorf("benchmark run failed for %s at concurrency %d: %w",
					strat.Name(), concurrency, err)
			}
			report.Queries = counter.Count()

			log.Info(report.String(),
				slog.String("run_id", report.RunID.String()),
				slog.String("strategy", report.Strategy),
				slog.Int("concurrency", report.Concurrency),
				slog.Int("pages", report.Pages),
				slog.Int("page_size", report.PageSize),
				slog.Float64("elapsed_ms", float64(report.Elapsed.Microseconds())/1000),
				slog.Int64("rows", report.Rows),
				slog.Int64("queries", report.Queries),
				slog.Int("failed_pages", len(report.Errors)))
			for _, pe := range report.Errors {
				log.Warn("page failed",
					slog.String("run_id", report.RunID.String()),
					slog.Int("page", pe.Page),
					slog.String("error", pe.Err.Error()))
			}

			stats := p.Stats()
			if stats.InUse != 0 || stats.Waiting != 0 {
				log.Warn("pool has leaked connections after run",
					slog.Int("in_use", stats.InUse),
					slog.Int("waiting", stats.Waiting))
			}
		}
	}

	return nil
}
