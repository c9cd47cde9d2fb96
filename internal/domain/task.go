package domain

// Task is the parent record paged over by the query strategies. Every task
// references exactly one owner via OwnerID. The completion flag is a plain
// boolean with no derived constraint.
type Task struct {
	ID      int64  `db:"id"`
	Title   string `db:"title"`
	Done    bool   `db:"is_done"`
	OwnerID int64  `db:"owner_id"`
}

// NewTask creates a Task for the given owner. The ID is assigned by the
// storage layer on insert.
// Returns an error if validation fails.
func NewTask(ownerID int64, title string, done bool) (*Task, error) {
	task := &Task{
		Title:   title,
		Done:    done,
		OwnerID: ownerID,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTitle
	}

	if t.OwnerID == 0 {
		return ErrMissingOwnerID
	}

	return nil
}

// TaskWithAnnotations is the logical result row of a page fetch: one task
// together with its annotations in ascending annotation-ID order. Every
// strategy produces this shape, whatever its query plan.
type TaskWithAnnotations struct {
	Task
	Annotations []Annotation
}
