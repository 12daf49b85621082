// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// Tests for the BadgerDB task store

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

func openTestStore(t *testing.T) *TaskStore {
	t.Helper()
	ts, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestCreateAppliesDefaults(t *testing.T) {
	ts := openTestStore(t)

	task, err := ts.Create(datatypes.TaskCreateRequest{Title: "minimal"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, datatypes.StatusTodo, task.Status)
	assert.Equal(t, datatypes.PriorityMedium, task.Priority)
	assert.NotNil(t, task.Tags)
	assert.Empty(t, task.Tags)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	ts := openTestStore(t)

	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	created, err := ts.Create(datatypes.TaskCreateRequest{
		Title:       "Fix login authentication bug",
		Description: "intermittent failures",
		Status:      datatypes.StatusInProgress,
		Priority:    datatypes.PriorityUrgent,
		Tags:        []string{"bug", "backend"},
		AssignedTo:  "Alice Chen",
		DueDate:     &due,
	})
	require.NoError(t, err)

	got, err := ts.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, datatypes.StatusInProgress, got.Status)
	assert.Equal(t, datatypes.PriorityUrgent, got.Priority)
	assert.Equal(t, []string{"bug", "backend"}, got.Tags)
	assert.Equal(t, "Alice Chen", got.AssignedTo)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
}

func TestGetNotFound(t *testing.T) {
	ts := openTestStore(t)

	_, err := ts.Get("no-such-id")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListFilters(t *testing.T) {
	ts := openTestStore(t)

	_, err := ts.Create(datatypes.TaskCreateRequest{
		Title: "a", Status: datatypes.StatusTodo, Priority: datatypes.PriorityHigh})
	require.NoError(t, err)
	_, err = ts.Create(datatypes.TaskCreateRequest{
		Title: "b", Status: datatypes.StatusCompleted, Priority: datatypes.PriorityHigh})
	require.NoError(t, err)
	_, err = ts.Create(datatypes.TaskCreateRequest{
		Title: "c", Status: datatypes.StatusTodo, Priority: datatypes.PriorityLow})
	require.NoError(t, err)

	all, err := ts.List("", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	todos, err := ts.List(datatypes.StatusTodo, "")
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	highTodos, err := ts.List(datatypes.StatusTodo, datatypes.PriorityHigh)
	require.NoError(t, err)
	require.Len(t, highTodos, 1)
	assert.Equal(t, "a", highTodos[0].Title)
}

func TestListEmptyReturnsSlice(t *testing.T) {
	ts := openTestStore(t)

	tasks, err := ts.List("", "")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestUpdatePartial(t *testing.T) {
	ts := openTestStore(t)

	created, err := ts.Create(datatypes.TaskCreateRequest{Title: "original"})
	require.NoError(t, err)

	completed := datatypes.StatusCompleted
	who := "Bob Smith"
	updated, err := ts.Update(created.ID, datatypes.TaskUpdateRequest{
		Status:     &completed,
		AssignedTo: &who,
	})
	require.NoError(t, err)

	// Untouched fields survive, touched fields change
	assert.Equal(t, "original", updated.Title)
	assert.Equal(t, datatypes.StatusCompleted, updated.Status)
	assert.Equal(t, "Bob Smith", updated.AssignedTo)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateNotFound(t *testing.T) {
	ts := openTestStore(t)

	title := "ghost"
	_, err := ts.Update("no-such-id", datatypes.TaskUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDelete(t *testing.T) {
	ts := openTestStore(t)

	created, err := ts.Create(datatypes.TaskCreateRequest{Title: "doomed"})
	require.NoError(t, err)

	require.NoError(t, ts.Delete(created.ID))
	_, err = ts.Get(created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, ts.Delete(created.ID), ErrTaskNotFound)
}

func TestDeleteAllAndCount(t *testing.T) {
	ts := openTestStore(t)

	for i := 0; i < 4; i++ {
		_, err := ts.Create(datatypes.TaskCreateRequest{Title: "t"})
		require.NoError(t, err)
	}

	n, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, ts.DeleteAll())

	n, err = ts.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
