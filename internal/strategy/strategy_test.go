package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybench/querybench/internal/domain"
)

func int64p(v int64) *int64 { return &v }
func strp(v string) *string { return &v }

func TestPageOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Page{Number: 0, Size: 20}.Offset())
	assert.Equal(t, 60, Page{Number: 3, Size: 20}.Offset())
}

func TestGroupAnnotationsPreservesOrder(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		{ID: 1, Title: "user1-task-0", OwnerID: 1},
		{ID: 2, Title: "user1-task-1", OwnerID: 1},
		{ID: 3, Title: "user1-task-2", OwnerID: 1},
	}
	// Annotations arrive ordered by id, interleaved across tasks.
	annotations := []domain.Annotation{
		{ID: 10, Body: "c1-0", TaskID: 1},
		{ID: 11, Body: "c2-0", TaskID: 1},
		{ID: 12, Body: "c1-2", TaskID: 3},
		{ID: 13, Body: "c2-2", TaskID: 3},
	}

	got := groupAnnotations(tasks, annotations)
	require.Len(t, got, 3)

	assert.Equal(t, []domain.Annotation{
		{ID: 10, Body: "c1-0", TaskID: 1},
		{ID: 11, Body: "c2-0", TaskID: 1},
	}, got[0].Annotations)

	assert.Empty(t, got[1].Annotations, "task without annotations stays in the page")

	assert.Equal(t, []domain.Annotation{
		{ID: 12, Body: "c1-2", TaskID: 3},
		{ID: 13, Body: "c2-2", TaskID: 3},
	}, got[2].Annotations)
}

func TestCollapseJoinedRowsDeduplicatesFanOut(t *testing.T) {
	t.Parallel()

	rows := []joinedRow{
		{TaskID: 1, TaskTitle: "user1-task-0", TaskOwnerID: 1,
			AnnotationID: int64p(10), AnnotationBody: strp("c1-0"), AnnotationTaskID: int64p(1)},
		{TaskID: 1, TaskTitle: "user1-task-0", TaskOwnerID: 1,
			AnnotationID: int64p(11), AnnotationBody: strp("c2-0"), AnnotationTaskID: int64p(1)},
		{TaskID: 2, TaskTitle: "user1-task-1", TaskIsDone: true, TaskOwnerID: 1},
	}

	got := collapseJoinedRows(rows)
	require.Len(t, got, 2, "fan-out rows must collapse to one logical task")

	assert.Equal(t, int64(1), got[0].ID)
	require.Len(t, got[0].Annotations, 2)
	assert.Equal(t, "c1-0", got[0].Annotations[0].Body)
	assert.Equal(t, "c2-0", got[0].Annotations[1].Body)

	assert.Equal(t, int64(2), got[1].ID)
	assert.True(t, got[1].Done)
	assert.Empty(t, got[1].Annotations, "NULL annotation columns mean no annotations")
}

func TestCollapseJoinedRowsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, collapseJoinedRows(nil))
}

func TestStrategyNames(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	for _, s := range All() {
		names[s.Name()] = true
	}
	assert.Equal(t, map[string]bool{
		"eager":               true,
		"incremental-batched": true,
		"incremental-naive":   true,
	}, names)
}

func TestPageSQLUsesSchemaDescriptors(t *testing.T) {
	t.Parallel()

	assert.Contains(t, taskPageSQL, "FROM tasks")
	assert.Contains(t, taskPageSQL, "ORDER BY id OFFSET $1 LIMIT $2")
	assert.Contains(t, annotationsByTaskSetSQL, "ANY($1)")
	assert.Contains(t, eagerPageSQL, "LEFT JOIN annotations a ON a.task_id = t.id")
}
