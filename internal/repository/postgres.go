package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todone/internal/models"
)

type PostgresRepository struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	// acquireTimeout bounds how long a statement may wait for a pooled
	// connection and run. Zero means no bound.
	acquireTimeout time.Duration
}

var _ TaskRepository = (*PostgresRepository)(nil)

func NewPostgresRepository(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	acquireTimeout time.Duration,
) *PostgresRepository {
	return &PostgresRepository{
		logger:         logger,
		pgPool:         pgPool,
		acquireTimeout: acquireTimeout,
	}
}

const selectTaskColumns = `id::text,
       title,
       description,
       completed,
       priority,
       created_at,
       updated_at`

func (r *PostgresRepository) Create(ctx context.Context, fields models.TaskFields) (models.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	id, err := newTaskID()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to generate task id")
		return models.Task{}, err
	}
	task := models.NewTask(id, fields, models.Now())
	taskID, _ := parseTaskID(task.ID)

	const insertTaskQuery = `
INSERT INTO todos (id,
                   title,
                   description,
                   completed,
                   priority,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + selectTaskColumns

	task, err = scanTask(r.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		taskID,
		task.Title,
		task.Description,
		task.Completed,
		string(task.Priority),
		task.CreatedAt,
		task.UpdatedAt,
	))
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return models.Task{}, classifyPgError(err)
	}
	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return task, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const selectTasksQuery = `
SELECT ` + selectTaskColumns + `
FROM todos
ORDER BY created_at DESC, id DESC
`
	rows, err := r.pgPool.Query(ctx, selectTasksQuery)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	r.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (models.Task, bool, error) {
	taskID, ok := parseTaskID(id)
	if !ok {
		return models.Task{}, false, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const selectTaskByIDQuery = `
SELECT ` + selectTaskColumns + `
FROM todos
WHERE id = $1
`
	task, err := scanTask(r.pgPool.QueryRow(ctx, selectTaskByIDQuery, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("task_id", id).
				Msg("task not found")
			return models.Task{}, false, nil
		}

		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task by id")
		return models.Task{}, false, err
	}
	return task, true, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, bool, error) {
	taskID, ok := parseTaskID(id)
	if !ok {
		return models.Task{}, false, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var priority *string
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}

	// A single statement keeps the read-modify-write under the row lock.
	const updateTaskQuery = `
UPDATE todos
SET title = COALESCE($2, title),
    description = COALESCE($3, description),
    completed = COALESCE($4, completed),
    priority = COALESCE($5, priority),
    updated_at = GREATEST($6, updated_at)
WHERE id = $1
RETURNING ` + selectTaskColumns

	task, err := scanTask(r.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		taskID,
		patch.Title,
		patch.Description,
		patch.Completed,
		priority,
		models.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("task_id", id).
				Msg("task not found")
			return models.Task{}, false, nil
		}

		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return models.Task{}, false, classifyPgError(err)
	}
	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, true, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	taskID, ok := parseTaskID(id)
	if !ok {
		return false, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const deleteTaskQuery = `
DELETE FROM todos
WHERE id = $1
`
	tag, err := r.pgPool.Exec(ctx, deleteTaskQuery, taskID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return false, err
	}
	r.logger.Debug().
		Str("task_id", id).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted task")
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int
	err := r.pgPool.QueryRow(ctx, `SELECT COUNT(*) FROM todos`).Scan(&count)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) Close() error {
	r.pgPool.Close()
	return nil
}

func (r *PostgresRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.acquireTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.acquireTimeout)
}

func scanTask(row pgx.Row) (models.Task, error) {
	var (
		task     models.Task
		priority string
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	task.Priority = models.Priority(priority)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return task, nil
}

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.CheckViolation,
		pgerrcode.NotNullViolation,
		pgerrcode.StringDataRightTruncationDataException,
		pgerrcode.InvalidTextRepresentation:
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.Message)
	default:
		return err
	}
}
