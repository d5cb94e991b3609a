package client

import (
	"context"
	"sync"

	"github.com/adanyl0v/todone/internal/models"
)

// Store keeps a State in step with a TaskAPI. Calls may overlap; each one
// applies its transition when its request resolves, so the last to resolve
// wins.
type Store struct {
	api TaskAPI

	mu    sync.Mutex
	state State
}

func NewStore(api TaskAPI) *Store {
	return &Store{
		api:   api,
		state: NewState(),
	}
}

// Snapshot returns the current state. Its Items slice is never mutated
// afterwards.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Store) apply(transition func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = transition(s.state)
}

func (s *Store) FetchAll(ctx context.Context) error {
	s.apply(State.FetchStarted)

	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		message := errorMessage(err, opFetch)
		s.apply(func(st State) State { return st.FetchFailed(message) })
		return err
	}

	s.apply(func(st State) State { return st.FetchSucceeded(tasks) })
	return nil
}

func (s *Store) Create(ctx context.Context, input TaskInput) (models.Task, error) {
	task, err := s.api.CreateTask(ctx, input)
	if err != nil {
		s.mutationFailed(err, opAdd)
		return models.Task{}, err
	}

	s.apply(func(st State) State { return st.Created(task) })
	return task, nil
}

func (s *Store) Update(ctx context.Context, id string, input TaskInput) (models.Task, error) {
	task, err := s.api.UpdateTask(ctx, id, input)
	if err != nil {
		s.mutationFailed(err, opUpdate)
		return models.Task{}, err
	}

	s.apply(func(st State) State { return st.Updated(task) })
	return task, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.api.DeleteTask(ctx, id)
	if err != nil {
		s.mutationFailed(err, opDelete)
		return err
	}

	s.apply(func(st State) State { return st.Deleted(id) })
	return nil
}

func (s *Store) mutationFailed(err error, op string) {
	message := errorMessage(err, op)
	s.apply(func(st State) State { return st.MutationFailed(message) })
}
