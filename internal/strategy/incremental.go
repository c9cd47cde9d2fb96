package strategy

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/querybench/querybench/internal/domain"
	"github.com/querybench/querybench/internal/store"
)

var (
	annotationsByTaskSQL = fmt.Sprintf(
		"SELECT %s FROM %s WHERE task_id = $1 ORDER BY id",
		domain.AnnotationSchema.ColumnList(),
		domain.AnnotationSchema.Name,
	)

	annotationsByTaskSetSQL = fmt.Sprintf(
		"SELECT %s FROM %s WHERE task_id = ANY($1) ORDER BY id",
		domain.AnnotationSchema.ColumnList(),
		domain.AnnotationSchema.Name,
	)
)

// IncrementalNaive fetches the task page, then issues one annotation
// query per task: 1+pageSize round trips per page. This is the true N+1
// access pattern the benchmark exists to measure.
type IncrementalNaive struct{}

// Name implements Strategy.
func (IncrementalNaive) Name() string {
	return "incremental-naive"
}

// FetchPage implements Strategy.
func (IncrementalNaive) FetchPage(
	ctx context.Context,
	q store.Querier,
	page Page,
) ([]domain.TaskWithAnnotations, error) {
	tasks, err := fetchTaskPage(ctx, q, page)
	if err != nil {
		return nil, err
	}

	result := make([]domain.TaskWithAnnotations, len(tasks))
	for i, task := range tasks {
		var annotations []domain.Annotation
		if err := pgxscan.Select(ctx, q, &annotations, annotationsByTaskSQL, task.ID); err != nil {
			return nil, fmt.Errorf("fetching annotations for task %d: %w", task.ID, err)
		}
		result[i] = domain.TaskWithAnnotations{Task: task, Annotations: annotations}
	}
	return result, nil
}

// IncrementalBatched fetches the task page, then one follow-up query for
// all annotations whose task is in the page's id set, grouped client
// side: exactly 2 round trips per page regardless of page size.
type IncrementalBatched struct{}

// Name implements Strategy.
func (IncrementalBatched) Name() string {
	return "incremental-batched"
}

// FetchPage implements Strategy.
func (IncrementalBatched) FetchPage(
	ctx context.Context,
	q store.Querier,
	page Page,
) ([]domain.TaskWithAnnotations, error) {
	tasks, err := fetchTaskPage(ctx, q, page)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	var annotations []domain.Annotation
	if err := pgxscan.Select(ctx, q, &annotations, annotationsByTaskSetSQL, ids); err != nil {
		return nil, fmt.Errorf("fetching annotations for page %d: %w", page.Number, err)
	}

	return groupAnnotations(tasks, annotations), nil
}

func fetchTaskPage(ctx context.Context, q store.Querier, page Page) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := pgxscan.Select(ctx, q, &tasks, taskPageSQL, page.Offset(), page.Size); err != nil {
		return nil, fmt.Errorf("fetching task page %d: %w", page.Number, err)
	}
	return tasks, nil
}

// groupAnnotations attaches annotations to their tasks, preserving task
// order and the annotations' query order within each task.
func groupAnnotations(
	tasks []domain.Task,
	annotations []domain.Annotation,
) []domain.TaskWithAnnotations {
	byTask := make(map[int64][]domain.Annotation, len(tasks))
	for _, a := range annotations {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}

	result := make([]domain.TaskWithAnnotations, len(tasks))
	for i, task := range tasks {
		result[i] = domain.TaskWithAnnotations{
			Task:        task,
			Annotations: byTask[task.ID],
		}
	}
	return result
}
