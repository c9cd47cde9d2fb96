package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx embeds the pgx.Tx interface and overrides only what the scope
// runner touches; calling anything else panics, which is what we want in
// a unit test.
type fakeTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestRunInScopeCommitsOnSuccess(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	err := RunInScope(context.Background(), &fakeBeginner{tx: tx}, func(ctx context.Context, got pgx.Tx) error {
		assert.Same(t, pgx.Tx(tx), got)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestRunInScopeRollsBackOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("duplicate key")
	tx := &fakeTx{}
	err := RunInScope(context.Background(), &fakeBeginner{tx: tx}, func(ctx context.Context, _ pgx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestRunInScopeRollsBackOnPanicAndRepanics(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInScope(context.Background(), &fakeBeginner{tx: tx}, func(ctx context.Context, _ pgx.Tx) error {
			panic("boom")
		})
	})
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestRunInScopeBeginFailure(t *testing.T) {
	t.Parallel()

	err := RunInScope(context.Background(), &fakeBeginner{beginErr: errors.New("connection lost")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin scope")
}

func TestRunInScopeCommitFailure(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{commitErr: errors.New("serialization failure")}
	err := RunInScope(context.Background(), &fakeBeginner{tx: tx}, func(ctx context.Context, _ pgx.Tx) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit scope")
}

func TestRunInScopeReportsRollbackFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("duplicate key")
	tx := &fakeTx{rollbackErr: errors.New("connection reset")}
	err := RunInScope(context.Background(), &fakeBeginner{tx: tx}, func(ctx context.Context, _ pgx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom, "the original failure must stay visible")
	assert.Contains(t, err.Error(), "error rolling back scope")
}
