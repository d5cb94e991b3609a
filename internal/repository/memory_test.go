package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todone/internal/models"
)

func TestMemoryRepository(t *testing.T) {
	testRepositoryBehaviour(t, func(t *testing.T) TaskRepository {
		return NewMemoryRepository()
	})
}

func TestMemoryRepository_ConcurrentCreates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, models.TaskFields{Title: "parallel", Priority: models.PriorityLow})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, workers)

	seen := make(map[string]struct{}, workers)
	for _, task := range tasks {
		seen[task.ID] = struct{}{}
	}
	assert.Len(t, seen, workers)
}
