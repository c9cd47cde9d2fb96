package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/querybench/querybench/internal/bench"
	"github.com/querybench/querybench/internal/pool"
	"github.com/querybench/querybench/internal/store"
	"github.com/querybench/querybench/internal/strategy"
)

// PageWorkload composes one page-fetch task: acquire a connection from
// the pool, run one transaction scope executing the strategy, release
// the connection. The returned PageFunc is what the benchmark runner
// schedules under its concurrency gate.
//
// A caller-imposed deadline that elapses while blocked on acquisition
// surfaces as store.ErrTimeout to that one waiter. Any failure is local
// to the page; the connection goes back to the pool with its scope
// closed, or is discarded if the failure killed it.
func PageWorkload(
	p *pool.Pool[*pgx.Conn],
	strat strategy.Strategy,
	pageSize int,
	probe store.Probe,
) bench.PageFunc {
	return func(ctx context.Context, page int) (int, error) {
		h, err := p.Acquire(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return 0, fmt.Errorf("%w: %v", store.ErrTimeout, err)
			}
			return 0, err
		}
		// Release must run even when ctx is already cancelled; the scope
		// has been closed by then. pgx closes the physical connection when
		// a deadline interrupts a statement, and such a connection must be
		// torn down rather than pooled.
		defer func() {
			rctx := context.WithoutCancel(ctx)
			if h.Conn.IsClosed() {
				p.Discard(rctx, h)
				return
			}
			p.Release(rctx, h)
		}()

		var rows int
		err = store.RunInScope(ctx, h.Conn, func(ctx context.Context, tx pgx.Tx) error {
			q := store.Instrument(tx, probe)
			result, err := strat.FetchPage(ctx, q, strategy.Page{Number: page, Size: pageSize})
			if err != nil {
				return MapError(err)
			}
			rows = len(result)
			return nil
		})
		if err != nil {
			return 0, err
		}
		return rows, nil
	}
}
