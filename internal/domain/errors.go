package domain

import "errors"

// Common validation errors used across the domain entities.
var (
	// ErrEmptyUsername is returned when an owner has no display name.
	ErrEmptyUsername = errors.New("owner username cannot be empty")

	// ErrEmptyTitle is returned when a task has no title.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrMissingOwnerID is returned when a task does not reference an owner.
	// A task without an owner is invalid.
	ErrMissingOwnerID = errors.New("task owner ID cannot be empty")

	// ErrEmptyBody is returned when an annotation has no text body.
	ErrEmptyBody = errors.New("annotation body cannot be empty")

	// ErrMissingTaskID is returned when an annotation does not reference a task.
	ErrMissingTaskID = errors.New("annotation task ID cannot be empty")
)
