package strategy

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/querybench/querybench/internal/domain"
	"github.com/querybench/querybench/internal/store"
)

// The page of tasks is selected in a subquery so OFFSET/LIMIT apply to
// tasks, not to the fanned-out joined rows. LEFT JOIN keeps tasks that
// have no annotations.
var eagerPageSQL = fmt.Sprintf(
	`SELECT %s, %s
FROM (SELECT %s FROM %s ORDER BY id OFFSET $1 LIMIT $2) t
LEFT JOIN %s a ON a.task_id = t.id
ORDER BY t.id, a.id`,
	domain.TaskSchema.AliasedColumnList("t", "task"),
	domain.AnnotationSchema.AliasedColumnList("a", "annotation"),
	domain.TaskSchema.ColumnList(),
	domain.TaskSchema.Name,
	domain.AnnotationSchema.Name,
)

// joinedRow is one row of the eager join: a task paired with at most one
// annotation. Annotation columns are NULL for tasks with no annotations.
type joinedRow struct {
	TaskID           int64   `db:"task_id"`
	TaskTitle        string  `db:"task_title"`
	TaskIsDone       bool    `db:"task_is_done"`
	TaskOwnerID      int64   `db:"task_owner_id"`
	AnnotationID     *int64  `db:"annotation_id"`
	AnnotationBody   *string `db:"annotation_body"`
	AnnotationTaskID *int64  `db:"annotation_task_id"`
}

// Eager fetches the page in exactly one joined query. A task with two
// annotations fans out to two joined rows and is collapsed client side
// into one logical task carrying both annotations.
type Eager struct{}

// Name implements Strategy.
func (Eager) Name() string {
	return "eager"
}

// FetchPage implements Strategy.
func (Eager) FetchPage(
	ctx context.Context,
	q store.Querier,
	page Page,
) ([]domain.TaskWithAnnotations, error) {
	var rows []joinedRow
	if err := pgxscan.Select(ctx, q, &rows, eagerPageSQL, page.Offset(), page.Size); err != nil {
		return nil, fmt.Errorf("fetching joined page %d: %w", page.Number, err)
	}
	return collapseJoinedRows(rows), nil
}

// collapseJoinedRows deduplicates fan-out: consecutive rows sharing a
// task id become one TaskWithAnnotations, annotations in row order. Rows
// arrive ordered by task id, so one pass suffices.
func collapseJoinedRows(rows []joinedRow) []domain.TaskWithAnnotations {
	var result []domain.TaskWithAnnotations
	for _, row := range rows {
		if n := len(result); n == 0 || result[n-1].ID != row.TaskID {
			result = append(result, domain.TaskWithAnnotations{
				Task: domain.Task{
					ID:      row.TaskID,
					Title:   row.TaskTitle,
					Done:    row.TaskIsDone,
					OwnerID: row.TaskOwnerID,
				},
			})
		}
		if row.AnnotationID != nil {
			last := &result[len(result)-1]
			last.Annotations = append(last.Annotations, domain.Annotation{
				ID:     *row.AnnotationID,
				Body:   *row.AnnotationBody,
				TaskID: *row.AnnotationTaskID,
			})
		}
	}
	return result
}
