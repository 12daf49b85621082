// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"time"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// ===========================================================================
// Validator
// ===========================================================================

// Validator is the façade the transport layer talks to. It owns the
// rule catalog and the episode bookkeeping, and turns a task snapshot
// plus a rule name into a graded ValidationResult.
//
// # Description
//
// Validate never returns an error for an unknown rule name: the agent
// asking about a rule that does not exist is itself a (zero-reward)
// environment signal, not a server fault. Rewards accumulate on every
// successful validation of a rule, including repeat validations of the
// same rule within one episode. De-duplication is the agent's job.
//
// # Limitations
//
//   - The Validator does not read the store. Callers pass the task
//     snapshot in, which keeps rule evaluation deterministic and
//     trivially testable.
type Validator struct {
	catalog *Catalog
	state   *EpisodeState
	now     func() time.Time
}

// NewValidator builds a Validator over the full rule catalog with
// fresh episode state. The clock defaults to time.Now and can be
// overridden with WithClock for deterministic tests.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		catalog: NewCatalog(),
		state:   NewEpisodeState(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidatorOption customizes Validator construction.
type ValidatorOption func(*Validator)

// WithClock replaces the wall clock used for overdue and deadline
// checks and for action timestamps.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

// TrackAction records one agent action against the current episode.
func (v *Validator) TrackAction(actionType string, data map[string]any) {
	v.state.TrackAction(actionType, data, v.now())
}

// Validate grades the given rule against the task snapshot. A
// successful validation credits the rule's reward to the episode
// total. Unknown rule names yield a failing result with zero reward.
func (v *Validator) Validate(name Name, tasks []datatypes.Task) datatypes.ValidationResult {
	rule, ok := v.catalog.Lookup(name)
	if !ok {
		return datatypes.ValidationResult{
			TaskName:  string(name),
			Completed: false,
			Reward:    0,
			Feedback:  fmt.Sprintf("Unknown task: %s", name),
			Details:   map[string]any{},
		}
	}

	outcome := rule.Evaluate(v.now(), tasks)
	reward := 0.0
	if outcome.Completed {
		reward = rule.Reward
		v.state.AddReward(reward)
	}
	return datatypes.ValidationResult{
		TaskName:  string(rule.Name),
		Completed: outcome.Completed,
		Reward:    reward,
		Feedback:  outcome.Feedback,
		Details:   outcome.Details,
	}
}

// Observe builds the aggregate environment view an agent polls between
// actions. Status and priority buckets appear only for values present
// in the snapshot; an empty snapshot yields empty maps and a 0.0
// completion rate.
func (v *Validator) Observe(tasks []datatypes.Task) datatypes.EnvironmentState {
	byStatus := make(map[string]int)
	byPriority := make(map[string]int)
	completed := 0
	for _, t := range tasks {
		byStatus[string(t.Status)]++
		byPriority[string(t.Priority)]++
		if t.Status == datatypes.StatusCompleted {
			completed++
		}
	}

	rate := 0.0
	if len(tasks) > 0 {
		rate = float64(completed) / float64(len(tasks)) * 100
	}

	actions, reward, episode := v.state.Snapshot()
	return datatypes.EnvironmentState{
		TotalTasks:      len(tasks),
		TasksByStatus:   byStatus,
		TasksByPriority: byPriority,
		CompletionRate:  rate,
		ActionsTaken:    actions,
		CurrentReward:   reward,
		EpisodeNumber:   episode,
	}
}

// ListRules returns every rule's name, description, reward, and
// difficulty in catalog order.
func (v *Validator) ListRules() []datatypes.RuleSummary {
	return v.catalog.List()
}

// Reset starts a new episode and returns its number.
func (v *Validator) Reset() int {
	return v.state.Reset()
}

// HasRule reports whether the catalog knows the given rule name.
func (v *Validator) HasRule(name Name) bool {
	_, ok := v.catalog.Lookup(name)
	return ok
}

// CumulativeReward returns the current episode's reward total.
func (v *Validator) CumulativeReward() float64 {
	_, reward, _ := v.state.Snapshot()
	return reward
}

// History exposes the current episode's action log.
func (v *Validator) History() []datatypes.ActionRecord {
	return v.state.History()
}
