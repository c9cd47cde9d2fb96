package domain

import (
	"errors"
	"testing"
)

func TestNewOwner(t *testing.T) {
	t.Parallel()

	owner, err := NewOwner("user1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if owner.ID != 0 {
		t.Errorf("Expected zero ID before insert, got %d", owner.ID)
	}

	if owner.Username != "user1" {
		t.Errorf("Expected username user1, got %s", owner.Username)
	}

	_, err = NewOwner("")
	if !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("Expected error %v, got %v", ErrEmptyUsername, err)
	}
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	task, err := NewTask(7, "user1-task-0", true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.OwnerID != 7 {
		t.Errorf("Expected owner ID 7, got %d", task.OwnerID)
	}

	if !task.Done {
		t.Error("Expected done flag to be set")
	}

	_, err = NewTask(7, "", false)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTitle, err)
	}

	_, err = NewTask(0, "orphan", false)
	if !errors.Is(err, ErrMissingOwnerID) {
		t.Errorf("Expected error %v, got %v", ErrMissingOwnerID, err)
	}
}

func TestNewAnnotation(t *testing.T) {
	t.Parallel()

	annotation, err := NewAnnotation(3, "c1-0")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if annotation.TaskID != 3 {
		t.Errorf("Expected task ID 3, got %d", annotation.TaskID)
	}

	_, err = NewAnnotation(3, "")
	if !errors.Is(err, ErrEmptyBody) {
		t.Errorf("Expected error %v, got %v", ErrEmptyBody, err)
	}

	_, err = NewAnnotation(0, "c1-0")
	if !errors.Is(err, ErrMissingTaskID) {
		t.Errorf("Expected error %v, got %v", ErrMissingTaskID, err)
	}
}

func TestSchemaColumnLists(t *testing.T) {
	t.Parallel()

	if got := TaskSchema.ColumnList(); got != "id, title, is_done, owner_id" {
		t.Errorf("Unexpected task column list: %s", got)
	}

	if got := TaskSchema.QualifiedColumnList("t"); got != "t.id, t.title, t.is_done, t.owner_id" {
		t.Errorf("Unexpected qualified column list: %s", got)
	}

	got := AnnotationSchema.AliasedColumnList("a", "annotation")
	want := "a.id AS annotation_id, a.body AS annotation_body, a.task_id AS annotation_task_id"
	if got != want {
		t.Errorf("Unexpected aliased column list:\n got %s\nwant %s", got, want)
	}
}

func TestSchemaNames(t *testing.T) {
	t.Parallel()

	for _, s := range []TableSchema{OwnerSchema, TaskSchema, AnnotationSchema} {
		if s.Name == "" {
			t.Error("Schema descriptor is missing a table name")
		}
		if len(s.Columns) == 0 {
			t.Errorf("Schema descriptor %s has no columns", s.Name)
		}
		if s.Columns[0].Name != "id" {
			t.Errorf("Schema descriptor %s must lead with the id column", s.Name)
		}
	}
}
