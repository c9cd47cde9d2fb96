// Package strategy implements the interchangeable algorithms for
// materializing a page of tasks together with their annotations: the
// incremental variants (one follow-up query per task, or one batched
// follow-up per page) and the eager variant (a single joined query).
// All variants produce the same logical result for the same page.
package strategy

import (
	"context"
	"fmt"

	"github.com/querybench/querybench/internal/domain"
	"github.com/querybench/querybench/internal/store"
)

// Page addresses one bounded, ordered slice of the tasks table: tasks
// ordered by id ascending, offset Number*Size, limited to Size rows.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// Strategy fetches one page of tasks with their annotations. A store
// error aborts only the current page's fetch; other in-flight pages are
// unaffected.
type Strategy interface {
	// Name identifies the strategy in reports and logs.
	Name() string

	// FetchPage materializes the page. Task order is by id ascending;
	// annotations within a task are ordered by annotation id ascending.
	FetchPage(ctx context.Context, q store.Querier, page Page) ([]domain.TaskWithAnnotations, error)
}

// taskPageSQL selects one page of tasks. Shared by both incremental
// variants and, as the inner query, by the eager join.
var taskPageSQL = fmt.Sprintf(
	"SELECT %s FROM %s ORDER BY id OFFSET $1 LIMIT $2",
	domain.TaskSchema.ColumnList(),
	domain.TaskSchema.Name,
)

// All returns every strategy, eager first. The driver benchmarks them in
// this order.
func All() []Strategy {
	return []Strategy{
		Eager{},
		IncrementalBatched{},
		IncrementalNaive{},
	}
}
