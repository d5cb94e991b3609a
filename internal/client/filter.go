package client

import (
	"fmt"

	"github.com/adanyl0v/todone/internal/models"
)

// Filter selects which cached tasks are shown. It exists only on the client.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

func ParseFilter(s string) (Filter, error) {
	switch s {
	case "all", "":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed":
		return FilterCompleted, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q", s)
	}
}

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Apply returns the matching tasks in their original order.
func (f Filter) Apply(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		switch {
		case f == FilterActive && task.Completed,
			f == FilterCompleted && !task.Completed:
			continue
		}
		out = append(out, task)
	}
	return out
}

// Progress summarizes the whole cached list, regardless of any filter.
func Progress(tasks []models.Task) models.TaskStats {
	return models.NewTaskStats(tasks)
}
