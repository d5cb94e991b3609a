package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adanyl0v/todone/internal/models"
)

// todoRecord is the gorm mapping of the todos table.
type todoRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:255;not null;check:title <> ''"`
	Description *string   `gorm:"type:text"`
	Completed   bool      `gorm:"not null;default:false"`
	Priority    string    `gorm:"size:6;not null;default:'medium';check:priority IN ('low','medium','high')"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:todos_created_at_idx"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (todoRecord) TableName() string {
	return "todos"
}

func newTodoRecord(task models.Task) todoRecord {
	return todoRecord{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (r todoRecord) task() models.Task {
	return models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    models.Priority(r.Priority),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// SQLiteRepository stores tasks through gorm in a SQLite database file.
type SQLiteRepository struct {
	logger zerolog.Logger
	db     *gorm.DB
}

var _ TaskRepository = (*SQLiteRepository)(nil)

// OpenSQLite opens (creating if needed) the database at path and migrates
// the todos table. Use ":memory:" for a throwaway database.
func OpenSQLite(log zerolog.Logger, path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite serializes writers, and every ":memory:" connection is its own
	// database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&todoRecord{})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return NewSQLiteRepository(log, db), nil
}

func NewSQLiteRepository(logger zerolog.Logger, db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{
		logger: logger,
		db:     db,
	}
}

func (r *SQLiteRepository) Create(ctx context.Context, fields models.TaskFields) (models.Task, error) {
	id, err := newTaskID()
	if err != nil {
		return models.Task{}, err
	}
	record := newTodoRecord(models.NewTask(id, fields, models.Now()))

	err = r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return models.Task{}, fmt.Errorf("failed to create task: %w", classifySQLiteError(err))
	}
	r.logger.Debug().
		Str("task_id", record.ID).
		Msg("inserted task")
	return record.task(), nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Task, error) {
	var records []todoRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]models.Task, len(records))
	for i, record := range records {
		tasks[i] = record.task()
	}
	return tasks, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (models.Task, bool, error) {
	id, ok := normalizeTaskID(id)
	if !ok {
		return models.Task{}, false, nil
	}

	record, ok, err := r.find(r.db.WithContext(ctx), id)
	if err != nil {
		return models.Task{}, false, err
	}
	return record.task(), ok, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, bool, error) {
	id, ok := normalizeTaskID(id)
	if !ok {
		return models.Task{}, false, nil
	}

	var (
		updated models.Task
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, ok, err := r.find(tx, id)
		if err != nil || !ok {
			return err
		}

		updated = record.task().Apply(patch, models.Now())
		found = true
		return tx.Model(&todoRecord{}).
			Where("id = ?", id).
			Select("*").
			Updates(newTodoRecord(updated)).Error
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return models.Task{}, false, fmt.Errorf("failed to update task: %w", classifySQLiteError(err))
	}
	return updated, found, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	id, ok := normalizeTaskID(id)
	if !ok {
		return false, nil
	}

	result := r.db.WithContext(ctx).Delete(&todoRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.RowsAffected > 0, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&todoRecord{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return int(count), nil
}

func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *SQLiteRepository) find(db *gorm.DB, id string) (todoRecord, bool, error) {
	var record todoRecord
	err := db.First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return todoRecord{}, false, nil
		}
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task by id")
		return todoRecord{}, false, fmt.Errorf("failed to find task: %w", err)
	}
	return record, true, nil
}

// classifySQLiteError maps CHECK and NOT NULL failures to
// ErrConstraintViolation and returns every other error unchanged.
func classifySQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return fmt.Errorf("%w: %s", ErrConstraintViolation, sqliteErr.Error())
	default:
		return err
	}
}
