package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/adanyl0v/todone/internal/models"
)

// ErrConstraintViolation is returned when the storage engine rejects a value
// that should have been caught by validation.
var ErrConstraintViolation = errors.New("task violates a storage constraint")

// TaskRepository persists tasks. A missing row is reported through the
// boolean result, never as an error.
type TaskRepository interface {
	// Create assigns an id and timestamps to the fields, stores the task
	// and returns it as persisted.
	Create(ctx context.Context, fields models.TaskFields) (models.Task, error)

	// ListAll returns every task, most recently created first.
	ListAll(ctx context.Context) ([]models.Task, error)

	// FindByID returns false if no task has the given id. Ids that are not
	// valid UUIDs are treated as missing.
	FindByID(ctx context.Context, id string) (models.Task, bool, error)

	// Update overlays the non-nil fields of the patch onto the stored task
	// and refreshes its UpdatedAt. It returns false if the task is missing.
	Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, bool, error)

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)

	Count(ctx context.Context) (int, error)

	Close() error
}

func newTaskID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// parseTaskID accepts only the hyphenated 36 character UUID form.
func parseTaskID(id string) (uuid.UUID, bool) {
	if len(id) != 36 {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

// normalizeTaskID returns the canonical lower case form of id.
func normalizeTaskID(id string) (string, bool) {
	parsed, ok := parseTaskID(id)
	if !ok {
		return "", false
	}
	return parsed.String(), true
}
