package domain

// Annotation is a free-text note attached to a task. Every annotation
// references exactly one task via TaskID.
type Annotation struct {
	ID     int64  `db:"id"`
	Body   string `db:"body"`
	TaskID int64  `db:"task_id"`
}

// NewAnnotation creates an Annotation for the given task. The ID is
// assigned by the storage layer on insert.
// Returns an error if validation fails.
func NewAnnotation(taskID int64, body string) (*Annotation, error) {
	annotation := &Annotation{
		Body:   body,
		TaskID: taskID,
	}

	if err := annotation.Validate(); err != nil {
		return nil, err
	}

	return annotation, nil
}

// Validate checks if the Annotation has valid data.
func (a *Annotation) Validate() error {
	if a.Body == "" {
		return ErrEmptyBody
	}

	if a.TaskID == 0 {
		return ErrMissingTaskID
	}

	return nil
}
