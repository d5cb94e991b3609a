package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todone/internal/models"
	"github.com/adanyl0v/todone/internal/repository"
	"github.com/adanyl0v/todone/internal/validation"
)

type taskServiceImpl struct {
	logger    zerolog.Logger
	repo      repository.TaskRepository
	validator *validation.Validator
}

func NewTaskService(
	logger zerolog.Logger,
	repo repository.TaskRepository,
	validator *validation.Validator,
) TaskService {
	return &taskServiceImpl{
		logger:    logger,
		repo:      repo,
		validator: validator,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, payload validation.Payload) (models.Task, error) {
	fields, err := s.validator.ValidateCreate(payload)
	if err != nil {
		s.logValidationError(err, "")
		return models.Task{}, err
	}

	task, err := s.repo.Create(ctx, fields)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create task")
		return models.Task{}, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, id string, payload validation.Payload) (models.Task, error) {
	_, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to find task")
		return models.Task{}, err
	}
	if !ok {
		s.logger.Info().
			Str("task_id", id).
			Msg("task not found")
		return models.Task{}, ErrTaskNotFound
	}

	patch, err := s.validator.ValidateUpdate(payload)
	if err != nil {
		s.logValidationError(err, id)
		return models.Task{}, err
	}

	// The task may have been deleted since the lookup above.
	task, ok, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return models.Task{}, err
	}
	if !ok {
		s.logger.Info().
			Str("task_id", id).
			Msg("task not found")
		return models.Task{}, ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	_, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to find task")
		return err
	}
	if !ok {
		s.logger.Info().
			Str("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if !deleted {
		s.logger.Info().
			Str("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) TaskStats(ctx context.Context) (models.TaskStats, error) {
	tasks, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return models.TaskStats{}, err
	}
	return models.NewTaskStats(tasks), nil
}

func (s *taskServiceImpl) logValidationError(err error, taskID string) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		s.logger.Error().
			Err(err).
			Msg("failed to validate payload")
		return
	}

	event := s.logger.Warn().
		Str("mode", verr.Mode.String()).
		Int("issues", len(verr.Issues))
	if taskID != "" {
		event = event.Str("task_id", taskID)
	}
	event.Msg("rejected task payload")
}
