// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// ValidationResult is the verdict returned for one rule evaluation.
//
// An unknown rule name produces a failing ValidationResult with zero
// reward rather than an error, so agents can probe rule names without
// special-casing failures.
type ValidationResult struct {
	TaskName  string         `json:"task_name"`
	Completed bool           `json:"completed"`
	Reward    float64        `json:"reward"`
	Feedback  string         `json:"feedback"`
	Details   map[string]any `json:"details"`
}

// EnvironmentState is the observation snapshot exposed to agents:
// group-by statistics over the current task collection merged with the
// episode bookkeeping counters.
type EnvironmentState struct {
	TotalTasks      int            `json:"total_tasks"`
	TasksByStatus   map[string]int `json:"tasks_by_status"`
	TasksByPriority map[string]int `json:"tasks_by_priority"`
	CompletionRate  float64        `json:"completion_rate"`
	ActionsTaken    int            `json:"actions_taken"`
	CurrentReward   float64        `json:"current_reward"`
	EpisodeNumber   int            `json:"episode_number"`
}

// RuleSummary describes one entry of the rule catalog without
// evaluating it.
type RuleSummary struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Reward      float64 `json:"reward"`
	Difficulty  string  `json:"difficulty"`
}

// ActionRecord is one entry of the per-episode action log.
type ActionRecord struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}
