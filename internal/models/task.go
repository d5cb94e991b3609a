package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const MaxTitleLength = 255

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskFields holds the normalized fields of a task about to be created.
type TaskFields struct {
	Title       string
	Description *string
	Completed   bool
	Priority    Priority
}

// TaskPatch holds the fields of an update. A nil field is left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Completed == nil &&
		p.Priority == nil
}

// Now returns the current time in the precision every storage backend
// round-trips without loss.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NewTask builds a fresh task from validated fields.
func NewTask(id string, fields TaskFields, now time.Time) Task {
	return Task{
		ID:          id,
		Title:       fields.Title,
		Description: fields.Description,
		Completed:   fields.Completed,
		Priority:    fields.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply returns a copy of t with the supplied patch fields overlaid.
// UpdatedAt never moves backwards.
func (t Task) Apply(patch TaskPatch, now time.Time) Task {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		description := *patch.Description
		t.Description = &description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
	return t
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Active     int `json:"active"`
	Percentage int `json:"percentage"`
}

func NewTaskStats(tasks []Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		if task.Completed {
			stats.Completed++
		}
	}
	stats.Active = stats.Total - stats.Completed
	if stats.Total > 0 {
		// Integer round-half-up of completed/total*100.
		stats.Percentage = (stats.Completed*200 + stats.Total) / (stats.Total * 2)
	}
	return stats
}
