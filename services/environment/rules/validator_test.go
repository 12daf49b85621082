// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// Tests for the validator façade and episode state

package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func threeCompleted() []datatypes.Task {
	return []datatypes.Task{
		mkTask(datatypes.StatusCompleted, datatypes.PriorityMedium),
		mkTask(datatypes.StatusCompleted, datatypes.PriorityMedium),
		mkTask(datatypes.StatusCompleted, datatypes.PriorityMedium),
	}
}

func TestValidateUnknownRule(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))

	result := v.Validate(Name("walk_the_dog"), nil)
	assert.Equal(t, "walk_the_dog", result.TaskName)
	assert.False(t, result.Completed)
	assert.Equal(t, 0.0, result.Reward)
	assert.Equal(t, "Unknown task: walk_the_dog", result.Feedback)
	assert.Empty(t, result.Details)
	assert.Equal(t, 0.0, v.CumulativeReward())
}

// Repeat validations of the same rule each credit the reward: the
// server keeps no memory of which rules were already banked, that is
// the agent's job.
func TestValidateAccumulatesOnRepeat(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))
	tasks := threeCompleted()

	first := v.Validate(CompleteThreeTasks, tasks)
	require.True(t, first.Completed)
	assert.Equal(t, 15.0, first.Reward)
	assert.Equal(t, 15.0, v.CumulativeReward())

	second := v.Validate(CompleteThreeTasks, tasks)
	require.True(t, second.Completed)
	assert.Equal(t, 15.0, second.Reward)
	assert.Equal(t, 30.0, v.CumulativeReward())
}

func TestValidateFailureEarnsNothing(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))

	result := v.Validate(CompleteThreeTasks, nil)
	assert.False(t, result.Completed)
	assert.Equal(t, 0.0, result.Reward)
	assert.Equal(t, 0.0, v.CumulativeReward())
}

func TestObserveEmptyBoard(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))

	state := v.Observe(nil)
	assert.Equal(t, 0, state.TotalTasks)
	assert.Empty(t, state.TasksByStatus)
	assert.Empty(t, state.TasksByPriority)
	assert.Equal(t, 0.0, state.CompletionRate)
	assert.Equal(t, 0, state.ActionsTaken)
	assert.Equal(t, 0.0, state.CurrentReward)
	assert.Equal(t, 1, state.EpisodeNumber)
}

func TestObserveCountsAndRate(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))
	tasks := append(threeCompleted(),
		mkTask(datatypes.StatusInProgress, datatypes.PriorityHigh),
		mkTask(datatypes.StatusTodo, datatypes.PriorityUrgent))

	state := v.Observe(tasks)
	assert.Equal(t, 5, state.TotalTasks)
	assert.Equal(t, 3, state.TasksByStatus["completed"])
	assert.Equal(t, 1, state.TasksByStatus["in_progress"])
	assert.Equal(t, 1, state.TasksByStatus["todo"])
	// Only statuses present on the board appear in the map
	_, hasArchived := state.TasksByStatus["archived"]
	assert.False(t, hasArchived)
	assert.Equal(t, 3, state.TasksByPriority["medium"])
	assert.InDelta(t, 60.0, state.CompletionRate, 0.001)
}

func TestTrackActionAndHistory(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))

	v.TrackAction("create_task", map[string]any{"task_id": "t1"})
	v.TrackAction("delete_task", map[string]any{"task_id": "t1"})

	state := v.Observe(nil)
	assert.Equal(t, 2, state.ActionsTaken)

	history := v.History()
	require.Len(t, history, 2)
	assert.Equal(t, "create_task", history[0].Type)
	assert.Equal(t, "delete_task", history[1].Type)
	assert.Equal(t, testNow, history[0].Timestamp)

	// History returns a copy
	history[0].Type = "mutated"
	assert.Equal(t, "create_task", v.History()[0].Type)
}

func TestResetStartsFreshEpisode(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))

	v.TrackAction("create_task", nil)
	v.Validate(CompleteThreeTasks, threeCompleted())
	require.Equal(t, 15.0, v.CumulativeReward())

	episode := v.Reset()
	assert.Equal(t, 2, episode)

	state := v.Observe(nil)
	assert.Equal(t, 0, state.ActionsTaken)
	assert.Equal(t, 0.0, state.CurrentReward)
	assert.Equal(t, 2, state.EpisodeNumber)
	assert.Empty(t, v.History())

	assert.Equal(t, 3, v.Reset())
}

func TestListRules(t *testing.T) {
	v := NewValidator()

	rules := v.ListRules()
	require.Len(t, rules, 24)
	assert.Equal(t, "create_urgent_task", rules[0].Name)
	assert.Equal(t, 10.0, rules[0].Reward)
	assert.Equal(t, "easy", rules[0].Difficulty)
	assert.Equal(t, "no_low_priority_in_progress", rules[23].Name)
}

func TestHasRule(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.HasRule(CleanSlate))
	assert.False(t, v.HasRule(Name("nope")))
}

// Overdue evaluation uses the injected clock, not the wall clock.
func TestValidateUsesInjectedClock(t *testing.T) {
	v := NewValidator(WithClock(fixedClock()))

	due := testNow.Add(-time.Hour)
	task := mkTask(datatypes.StatusTodo, datatypes.PriorityMedium)
	task.DueDate = &due

	result := v.Validate(ClearOverdueTasks, []datatypes.Task{task})
	assert.False(t, result.Completed)
	assert.Equal(t, "❌ 1 overdue task(s) need attention", result.Feedback)
}
