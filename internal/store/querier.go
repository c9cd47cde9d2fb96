package store

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the read surface the query strategies run against. It is
// implemented by *pgx.Conn and pgx.Tx, so a strategy works the same on a
// bare connection or inside a transaction scope.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Execer is the write surface used by seeding and the rollback tests.
// Implemented by *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Probe observes statement execution. It is attached explicitly per run
// (never via a global listener registry) so tests can count queries
// without shared mutable state.
type Probe interface {
	// ObserveQuery is called once for each statement issued through an
	// instrumented querier, before execution.
	ObserveQuery(sql string)
}

// QueryCounter is a Probe that counts issued statements. Safe for
// concurrent use.
type QueryCounter struct {
	n atomic.Int64
}

// NewQueryCounter returns a counter starting at zero.
func NewQueryCounter() *QueryCounter {
	return &QueryCounter{}
}

// ObserveQuery implements Probe.
func (c *QueryCounter) ObserveQuery(string) {
	c.n.Add(1)
}

// Count returns the number of statements observed so far.
func (c *QueryCounter) Count() int64 {
	return c.n.Load()
}

// Reset sets the counter back to zero.
func (c *QueryCounter) Reset() {
	c.n.Store(0)
}

// instrumentedQuerier wraps a Querier so every Query is reported to the
// probe before it is issued.
type instrumentedQuerier struct {
	q     Querier
	probe Probe
}

// Instrument returns a Querier that reports each issued statement to
// probe. A nil probe returns q unchanged.
func Instrument(q Querier, probe Probe) Querier {
	if probe == nil {
		return q
	}
	return &instrumentedQuerier{q: q, probe: probe}
}

func (iq *instrumentedQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	iq.probe.ObserveQuery(sql)
	return iq.q.Query(ctx, sql, args...)
}
