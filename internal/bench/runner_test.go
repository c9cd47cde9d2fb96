package bench

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Options{Pages: 50, Concurrency: 10}.Validate())
	assert.Error(t, Options{Pages: 0, Concurrency: 10}.Validate())
	assert.Error(t, Options{Pages: 50, Concurrency: 0}.Validate())
}

func TestRunAggregatesRows(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	fetch := func(ctx context.Context, page int) (int, error) {
		calls.Add(1)
		return 20, nil
	}

	runner := NewRunner(nil)
	report, err := runner.Run(context.Background(), fetch, Options{
		Strategy:    "eager",
		Pages:       50,
		PageSize:    20,
		Concurrency: 10,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 50, calls.Load(), "every page must be attempted")
	assert.EqualValues(t, 1000, report.Rows)
	assert.Equal(t, "eager", report.Strategy)
	assert.Equal(t, 10, report.Concurrency)
	assert.Equal(t, 50, report.Pages)
	assert.Equal(t, 20, report.PageSize)
	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.Positive(t, report.Elapsed)
	assert.Empty(t, report.Errors)
}

func TestRunEnforcesConcurrencyCap(t *testing.T) {
	t.Parallel()

	const limit = 4
	var executing, peak atomic.Int64
	fetch := func(ctx context.Context, page int) (int, error) {
		n := executing.Add(1)
		defer executing.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return 1, nil
	}

	runner := NewRunner(nil)
	_, err := runner.Run(context.Background(), fetch, Options{
		Strategy:    "incremental-naive",
		Pages:       40,
		Concurrency: limit,
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, peak.Load(), int64(limit))
	assert.Positive(t, peak.Load())
}

func TestRunRecordsPageErrorsWithoutAbortingSiblings(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("store unreachable")
	var calls atomic.Int64
	fetch := func(ctx context.Context, page int) (int, error) {
		calls.Add(1)
		if page == 3 || page == 7 {
			return 0, storeErr
		}
		return 5, nil
	}

	runner := NewRunner(nil)
	report, err := runner.Run(context.Background(), fetch, Options{
		Strategy:    "eager",
		Pages:       10,
		Concurrency: 2,
	})
	require.NoError(t, err, "default policy never fails the whole run")

	assert.EqualValues(t, 10, calls.Load(), "siblings of a failed page are still attempted")
	assert.EqualValues(t, 40, report.Rows, "failed pages contribute zero rows")

	require.Len(t, report.Errors, 2)
	assert.Equal(t, 3, report.Errors[0].Page)
	assert.Equal(t, 7, report.Errors[1].Page)
	assert.ErrorIs(t, report.Errors[0], storeErr)
}

func TestRunFailFastReturnsFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("constraint violation")
	fetch := func(ctx context.Context, page int) (int, error) {
		if page == 0 {
			return 0, boom
		}
		// Later pages either run before cancellation or are cancelled at
		// the gate; both are acceptable under fail-fast.
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond):
			return 1, nil
		}
	}

	runner := NewRunner(nil)
	report, err := runner.Run(context.Background(), fetch, Options{
		Strategy:    "eager",
		Pages:       20,
		Concurrency: 1,
	})
	require.NoError(t, err, "fail-fast off: error is recorded, not returned")
	assert.NotEmpty(t, report.Errors)

	report, err = runner.Run(context.Background(), fetch, Options{
		Strategy:    "eager",
		Pages:       20,
		Concurrency: 1,
		FailFast:    true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var pageErr PageError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 0, pageErr.Page)
	require.NotNil(t, report, "fail-fast still returns the partial report")
}

func TestRunBackToBack(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, page int) (int, error) { return 2, nil }
	runner := NewRunner(nil)

	for _, c := range []int{1, 5, 20} {
		report, err := runner.Run(context.Background(), fetch, Options{
			Strategy:    "incremental-batched",
			Pages:       10,
			Concurrency: c,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 20, report.Rows)
		assert.Empty(t, report.Errors)
	}
}

func TestReportString(t *testing.T) {
	t.Parallel()

	r := &Report{
		Strategy: "eager",
		Pages:    50,
		Elapsed:  123400 * time.Microsecond,
		Rows:     1000,
	}
	assert.Equal(t, "eager: 50 pages in 123.4 ms — 1000 rows rendered", r.String())
}
