package repository

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/adanyl0v/todone/internal/cache"
	"github.com/adanyl0v/todone/internal/models"
)

const (
	listCacheKey = "list"
	// generationKey is bumped by every mutation before its keys are evicted.
	// A loader that sees it move while reading the store drops what it read.
	generationKey = "generation"
)

func taskCacheKey(id string) string {
	return "task:" + id
}

// CachedRepository puts a cache-aside layer in front of another repository.
// Reads are served from the cache when possible; every successful mutation
// evicts the affected keys. Cache failures are logged and otherwise ignored.
//
// Every fill is fenced by the generation counter: the loader reads it before
// the store and again after storing the value, and evicts its own write if a
// mutation happened in between.
type CachedRepository struct {
	logger zerolog.Logger
	next   TaskRepository
	cache  *cache.Cache
	group  singleflight.Group
}

var _ TaskRepository = (*CachedRepository)(nil)

func NewCachedRepository(logger zerolog.Logger, next TaskRepository, c *cache.Cache) *CachedRepository {
	return &CachedRepository{
		logger: logger,
		next:   next,
		cache:  c,
	}
}

func (r *CachedRepository) Create(ctx context.Context, fields models.TaskFields) (models.Task, error) {
	task, err := r.next.Create(ctx, fields)
	if err != nil {
		return models.Task{}, err
	}
	r.evict(ctx)
	return task, nil
}

func (r *CachedRepository) ListAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	found, err := r.cache.Get(ctx, listCacheKey, &tasks)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Msg("failed to read task list from cache")
	}
	if found {
		return tasks, nil
	}

	v, err, _ := r.group.Do(listCacheKey, func() (any, error) {
		generation, cacheable := r.generation(ctx)
		tasks, err := r.next.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			r.fill(ctx, listCacheKey, tasks, generation)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Task), nil
}

func (r *CachedRepository) FindByID(ctx context.Context, id string) (models.Task, bool, error) {
	id, ok := normalizeTaskID(id)
	if !ok {
		return models.Task{}, false, nil
	}

	var task models.Task
	found, err := r.cache.Get(ctx, taskCacheKey(id), &task)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("task_id", id).
			Msg("failed to read task from cache")
	}
	if found {
		return task, true, nil
	}

	generation, cacheable := r.generation(ctx)
	task, ok, err = r.next.FindByID(ctx, id)
	if err != nil || !ok {
		return task, ok, err
	}
	if cacheable {
		r.fill(ctx, taskCacheKey(id), task, generation)
	}
	return task, true, nil
}

func (r *CachedRepository) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, bool, error) {
	task, ok, err := r.next.Update(ctx, id, patch)
	if err != nil || !ok {
		return task, ok, err
	}
	r.evict(ctx, task.ID)
	return task, true, nil
}

func (r *CachedRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.next.Delete(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	if id, ok := normalizeTaskID(id); ok {
		r.evict(ctx, id)
	}
	return true, nil
}

func (r *CachedRepository) Count(ctx context.Context) (int, error) {
	return r.next.Count(ctx)
}

func (r *CachedRepository) Close() error {
	r.logger.Debug().
		Interface("stats", r.cache.Stats()).
		Msg("closing task cache")

	err := r.cache.Close()
	if err != nil {
		r.logger.Warn().
			Err(err).
			Msg("failed to close cache")
	}
	return r.next.Close()
}

func (r *CachedRepository) generation(ctx context.Context) (int64, bool) {
	generation, err := r.cache.Counter(ctx, generationKey)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Msg("failed to read cache generation")
		return 0, false
	}
	return generation, true
}

// fill stores value under key unless a mutation bumped the generation since
// the loader read it.
func (r *CachedRepository) fill(ctx context.Context, key string, value any, generation int64) {
	current, ok := r.generation(ctx)
	if !ok || current != generation {
		return
	}

	err := r.cache.Set(ctx, key, value)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to cache tasks")
		return
	}

	// A mutation may have slipped in between the check and the write.
	current, ok = r.generation(ctx)
	if ok && current == generation {
		return
	}
	err = r.cache.Delete(ctx, key)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to drop stale cache entry")
	}
}

func (r *CachedRepository) evict(ctx context.Context, ids ...string) {
	keys := []string{listCacheKey}
	for _, id := range ids {
		keys = append(keys, taskCacheKey(id))
	}

	_, err := r.cache.Incr(ctx, generationKey)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Msg("failed to bump cache generation")
	}
	r.group.Forget(listCacheKey)

	err = r.cache.Delete(ctx, keys...)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Strs("keys", keys).
			Msg("failed to evict cached tasks")
	}
}
