package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todone/internal/models"
)

func task(id string, completed bool) models.Task {
	return models.Task{ID: id, Title: "task " + id, Completed: completed, Priority: models.PriorityMedium}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestState_FetchLifecycle(t *testing.T) {
	s := NewState()
	assert.Equal(t, StatusIdle, s.Status)
	assert.Empty(t, s.Items)

	s = s.FetchStarted()
	assert.Equal(t, StatusLoading, s.Status)

	s = s.FetchSucceeded([]models.Task{task("b", false), task("a", true)})
	assert.Equal(t, StatusSucceeded, s.Status)
	assert.Equal(t, []string{"b", "a"}, ids(s.Items))
	assert.Empty(t, s.Err)

	s = s.FetchStarted().FetchFailed("failed to fetch todos")
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, "failed to fetch todos", s.Err)
	// Cached items survive a failed refresh.
	assert.Equal(t, []string{"b", "a"}, ids(s.Items))

	s = s.FetchSucceeded(nil)
	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)
	assert.Empty(t, s.Err)
}

func TestState_Mutations(t *testing.T) {
	s := NewState().FetchSucceeded([]models.Task{task("b", false), task("a", false)})

	s = s.Created(task("c", false))
	assert.Equal(t, []string{"c", "b", "a"}, ids(s.Items))

	updated := task("b", true)
	updated.Title = "renamed"
	s = s.Updated(updated)
	assert.Equal(t, []string{"c", "b", "a"}, ids(s.Items))
	assert.Equal(t, "renamed", s.Items[1].Title)
	assert.True(t, s.Items[1].Completed)

	s = s.Deleted("c")
	assert.Equal(t, []string{"b", "a"}, ids(s.Items))
	assert.Equal(t, StatusSucceeded, s.Status)
}

func TestState_UnknownIDsAreIgnored(t *testing.T) {
	s := NewState().FetchSucceeded([]models.Task{task("a", false)})

	assert.Equal(t, s.Items, s.Updated(task("zzz", true)).Items)
	assert.Equal(t, s.Items, s.Deleted("zzz").Items)
}

func TestState_MutationFailedKeepsItemsAndStatus(t *testing.T) {
	s := NewState().FetchSucceeded([]models.Task{task("a", false)})

	failed := s.MutationFailed("todo not found")
	assert.Equal(t, "todo not found", failed.Err)
	assert.Equal(t, StatusSucceeded, failed.Status)
	assert.Equal(t, s.Items, failed.Items)

	// The next successful mutation clears the message.
	assert.Empty(t, failed.Created(task("b", false)).Err)
}

func TestState_TransitionsDoNotShareItems(t *testing.T) {
	base := NewState().FetchSucceeded([]models.Task{task("a", false), task("b", false)})

	_ = base.Updated(task("a", true))
	_ = base.Deleted("a")
	_ = base.Created(task("c", false))

	require.Len(t, base.Items, 2)
	assert.Equal(t, []string{"a", "b"}, ids(base.Items))
	assert.False(t, base.Items[0].Completed)

	items := []models.Task{task("x", false)}
	s := NewState().FetchSucceeded(items)
	items[0].Title = "changed"
	assert.Equal(t, "task x", s.Items[0].Title)
}
