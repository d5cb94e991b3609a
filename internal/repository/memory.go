package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/adanyl0v/todone/internal/models"
)

// MemoryRepository keeps tasks in process memory. It backs the "memory"
// storage driver and stands in for a database in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

var _ TaskRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[string]models.Task),
	}
}

func (r *MemoryRepository) Create(_ context.Context, fields models.TaskFields) (models.Task, error) {
	id, err := newTaskID()
	if err != nil {
		return models.Task{}, err
	}
	task := models.NewTask(id, fields, models.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task
	return task, nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	sortNewestFirst(tasks)
	return tasks, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (models.Task, bool, error) {
	id, ok := normalizeTaskID(id)
	if !ok {
		return models.Task{}, false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	return task, ok, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch models.TaskPatch) (models.Task, bool, error) {
	id, ok := normalizeTaskID(id)
	if !ok {
		return models.Task{}, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return models.Task{}, false, nil
	}
	task = task.Apply(patch, models.Now())
	r.tasks[id] = task
	return task, true, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	id, ok := normalizeTaskID(id)
	if !ok {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok = r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tasks), nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func sortNewestFirst(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
}
