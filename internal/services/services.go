package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/todone/internal/models"
	"github.com/adanyl0v/todone/internal/validation"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskService interface {
	// CreateTask validates the payload and stores a new task.
	//
	// It returns a *validation.Error if the payload is rejected.
	CreateTask(ctx context.Context, payload validation.Payload) (models.Task, error)

	// ListTasks returns every task, most recently created first.
	ListTasks(ctx context.Context) ([]models.Task, error)

	// UpdateTask overlays the fields present in the payload onto the task
	// with the given id.
	//
	// It returns ErrTaskNotFound if the task doesn't exist, which is checked
	// before the payload is validated, or a *validation.Error if the
	// payload is rejected.
	UpdateTask(ctx context.Context, id string, payload validation.Payload) (models.Task, error)

	// DeleteTask returns ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id string) error

	// TaskStats summarizes how many tasks are done.
	TaskStats(ctx context.Context) (models.TaskStats, error)
}
