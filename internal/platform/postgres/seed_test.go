package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedSpecTotals(t *testing.T) {
	t.Parallel()

	spec := DefaultSeedSpec()
	assert.Equal(t, 20, spec.Owners)
	assert.Equal(t, 2000, spec.TotalTasks())
	assert.Equal(t, 4000, spec.TotalAnnotations())

	small := SeedSpec{Owners: 3, TasksPerOwner: 4, AnnotationsPerTask: 5}
	assert.Equal(t, 12, small.TotalTasks())
	assert.Equal(t, 60, small.TotalAnnotations())
}

func TestInsertStatementsTargetSchemaTables(t *testing.T) {
	t.Parallel()

	assert.Contains(t, insertOwnerSQL, "INSERT INTO owners")
	assert.Contains(t, insertOwnerSQL, "RETURNING id")
	assert.Contains(t, insertTaskSQL, "INSERT INTO tasks")
	assert.Contains(t, insertAnnotationSQL, "INSERT INTO annotations")
}
