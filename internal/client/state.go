// Package client holds the client-side copy of the task list and keeps it in
// step with the task API.
package client

import (
	"slices"

	"github.com/adanyl0v/todone/internal/models"
)

// Status tracks the lifecycle of the last fetch. Mutations never change it.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is the client's cached view of the task list. Every transition
// returns a new State and leaves the receiver untouched, so a State may be
// shared freely once built.
type State struct {
	Items  []models.Task
	Status Status
	// Err is the message of the last failed request, if any.
	Err string
}

func NewState() State {
	return State{
		Items:  []models.Task{},
		Status: StatusIdle,
	}
}

func (s State) FetchStarted() State {
	s.Status = StatusLoading
	return s
}

// FetchSucceeded replaces the cached items wholesale.
func (s State) FetchSucceeded(items []models.Task) State {
	s.Items = slices.Clone(items)
	if s.Items == nil {
		s.Items = []models.Task{}
	}
	s.Status = StatusSucceeded
	s.Err = ""
	return s
}

// FetchFailed keeps the previously cached items.
func (s State) FetchFailed(message string) State {
	s.Status = StatusFailed
	s.Err = message
	return s
}

// Created puts a newly created task at the head of the list.
func (s State) Created(task models.Task) State {
	items := make([]models.Task, 0, len(s.Items)+1)
	items = append(items, task)
	s.Items = append(items, s.Items...)
	s.Err = ""
	return s
}

// Updated replaces the first cached task with the same id. A task that is
// not cached is ignored.
func (s State) Updated(task models.Task) State {
	i := slices.IndexFunc(s.Items, func(t models.Task) bool {
		return t.ID == task.ID
	})
	s.Err = ""
	if i < 0 {
		return s
	}

	s.Items = slices.Clone(s.Items)
	s.Items[i] = task
	return s
}

func (s State) Deleted(id string) State {
	s.Items = slices.DeleteFunc(slices.Clone(s.Items), func(t models.Task) bool {
		return t.ID == id
	})
	s.Err = ""
	return s
}

// MutationFailed records the error without touching the items or status.
func (s State) MutationFailed(message string) State {
	s.Err = message
	return s
}
