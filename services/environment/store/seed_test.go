// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// Tests for the embedded seed board

package store

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

func TestPopulateSeedsFifteenTasks(t *testing.T) {
	ts := openTestStore(t)

	seeded, err := ts.Populate(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 15, seeded)

	tasks, err := ts.List("", "")
	require.NoError(t, err)
	require.Len(t, tasks, 15)

	for _, task := range tasks {
		assert.NotEmpty(t, task.ID)
		assert.NotEmpty(t, task.Title)
		assert.True(t, task.Status.Valid(), "status %q", task.Status)
		assert.True(t, task.Priority.Valid(), "priority %q", task.Priority)
		assert.NotEmpty(t, task.Tags)
		require.NotNil(t, task.DueDate)
	}
}

func TestPopulateIsNoOpWhenNonEmpty(t *testing.T) {
	ts := openTestStore(t)

	_, err := ts.Create(datatypes.TaskCreateRequest{Title: "pre-existing"})
	require.NoError(t, err)

	seeded, err := ts.Populate(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 0, seeded)

	n, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPopulateReproducibleWithSeed(t *testing.T) {
	ts1 := openTestStore(t)
	ts2 := openTestStore(t)

	_, err := ts1.Populate(rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	_, err = ts2.Populate(rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	tasks1, err := ts1.List("", "")
	require.NoError(t, err)
	tasks2, err := ts2.List("", "")
	require.NoError(t, err)

	require.Len(t, tasks2, len(tasks1))
	for i := range tasks1 {
		assert.Equal(t, tasks1[i].ID, tasks2[i].ID)
		assert.Equal(t, tasks1[i].AssignedTo, tasks2[i].AssignedTo)
	}
}

func TestPopulateSeedsKnownBoardShape(t *testing.T) {
	ts := openTestStore(t)

	_, err := ts.Populate(rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	// The template board always contains urgent work and completed work.
	urgent, err := ts.List("", datatypes.PriorityUrgent)
	require.NoError(t, err)
	assert.Len(t, urgent, 2)

	completed, err := ts.List(datatypes.StatusCompleted, "")
	require.NoError(t, err)
	assert.Len(t, completed, 3)
}
