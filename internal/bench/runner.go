// Package bench provides the benchmark runner: it schedules one fetch
// task per page under a concurrency cap, waits for all of them, and
// aggregates wall-clock time, rendered rows, and per-page failures into
// a report.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// PageFunc fetches one page and reports how many rows it rendered. The
// workload behind it acquires a pool connection, runs one transaction
// scope, and releases the connection before returning.
type PageFunc func(ctx context.Context, page int) (rows int, err error)

// Options configures one benchmark run.
type Options struct {
	// Strategy names the access pattern under test, for the report.
	Strategy string

	// Pages is the number of page-fetch tasks to schedule.
	Pages int

	// PageSize is the page size the workload fetches with; carried into
	// the report only.
	PageSize int

	// Concurrency caps how many page tasks may be executing (holding a
	// pool connection) at once. This gate and the pool's own sizing are
	// independent bounds; a gate above base+overflow merely degrades to
	// pool-level queuing.
	Concurrency int

	// FailFast aborts the run on the first page failure. The default
	// policy attempts every page and records failures in the report.
	FailFast bool
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Pages <= 0 {
		return fmt.Errorf("pages must be positive, got %d", o.Pages)
	}
	if o.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", o.Concurrency)
	}
	return nil
}

// PageError records the failure of a single page task.
type PageError struct {
	Page int
	Err  error
}

// Error implements the error interface.
func (e PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

// Unwrap returns the underlying error to support errors.Is/errors.As.
func (e PageError) Unwrap() error {
	return e.Err
}

// Report is the outcome of one benchmark run. A failed page contributes
// zero rows and one entry in Errors.
type Report struct {
	RunID       uuid.UUID
	Strategy    string
	Concurrency int
	Pages       int
	PageSize    int
	Elapsed     time.Duration
	Rows        int64

	// Queries is the statement count observed by the run's probe. It is
	// filled in by the caller that owns the probe.
	Queries int64

	Errors []PageError
}

// String renders the report in one line, e.g.
// "eager: 50 pages in 123.4 ms — 1000 rows rendered".
func (r *Report) String() string {
	return fmt.Sprintf("%s: %d pages in %.1f ms — %d rows rendered",
		r.Strategy, r.Pages, float64(r.Elapsed.Microseconds())/1000, r.Rows)
}

// Runner executes benchmark runs. It is stateless across runs: the same
// runner can be used back-to-back for multiple strategies and concurrency
// levels without leaking state between them.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner. A nil logger falls back to slog.Default().
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger: logger.With(slog.String("component", "bench_runner")),
	}
}

// Run schedules opts.Pages page tasks over fetch, at most
// opts.Concurrency executing at once, and blocks until all finish. With
// FailFast off (the default) every page is attempted and per-page errors
// are collected in the report; with FailFast on the first page error
// cancels the remaining tasks and is returned alongside the partial
// report. In-flight pages are never abandoned mid-scope: cancellation
// surfaces to them as a statement error inside their own scope.
func (r *Runner) Run(ctx context.Context, fetch PageFunc, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	log := r.logger.With(
		slog.String("run_id", runID.String()),
		slog.String("strategy", opts.Strategy),
		slog.Int("concurrency", opts.Concurrency),
	)

	gate := semaphore.NewWeighted(int64(opts.Concurrency))
	g, gctx := errgroup.WithContext(ctx)

	var rows atomic.Int64
	var mu sync.Mutex
	var pageErrs []PageError

	record := func(page int, err error) {
		mu.Lock()
		pageErrs = append(pageErrs, PageError{Page: page, Err: err})
		mu.Unlock()
	}

	start := time.Now()
	for page := 0; page < opts.Pages; page++ {
		g.Go(func() error {
			if err := gate.Acquire(gctx, 1); err != nil {
				// The run was cancelled before this page got to execute.
				record(page, err)
				if opts.FailFast {
					return PageError{Page: page, Err: err}
				}
				return nil
			}
			defer gate.Release(1)

			n, err := fetch(gctx, page)
			if err != nil {
				log.Debug("page task failed",
					slog.Int("page", page),
					slog.String("error", err.Error()))
				record(page, err)
				if opts.FailFast {
					return PageError{Page: page, Err: err}
				}
				return nil
			}

			rows.Add(int64(n))
			return nil
		})
	}

	runErr := g.Wait()
	elapsed := time.Since(start)

	sort.Slice(pageErrs, func(i, j int) bool { return pageErrs[i].Page < pageErrs[j].Page })

	report := &Report{
		RunID:       runID,
		Strategy:    opts.Strategy,
		Concurrency: opts.Concurrency,
		Pages:       opts.Pages,
		PageSize:    opts.PageSize,
		Elapsed:     elapsed,
		Rows:        rows.Load(),
		Errors:      pageErrs,
	}

	log.Info("benchmark run finished",
		slog.Int("pages", opts.Pages),
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", report.Rows),
		slog.Int("failed_pages", len(pageErrs)))

	return report, runErr
}
