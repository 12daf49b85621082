// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"sync"
	"time"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// EpisodeState tracks the mutable bookkeeping of a single training
// episode: how many actions the agent has taken, the cumulative reward
// it has earned, and which episode we are on. All methods are safe for
// concurrent use.
//
// Episode numbering starts at 1 and increments on every Reset.
type EpisodeState struct {
	mu               sync.Mutex
	actionsTaken     int
	cumulativeReward float64
	episodeNumber    int
	history          []datatypes.ActionRecord
}

// NewEpisodeState returns episode bookkeeping positioned at episode 1
// with zero actions and zero reward.
func NewEpisodeState() *EpisodeState {
	return &EpisodeState{episodeNumber: 1}
}

// TrackAction records one agent action and appends it to the episode
// history.
func (e *EpisodeState) TrackAction(actionType string, data map[string]any, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actionsTaken++
	e.history = append(e.history, datatypes.ActionRecord{
		Type:      actionType,
		Data:      data,
		Timestamp: at,
	})
}

// AddReward credits reward earned by a successful validation.
func (e *EpisodeState) AddReward(reward float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cumulativeReward += reward
}

// Snapshot returns the current counters without mutating anything.
func (e *EpisodeState) Snapshot() (actionsTaken int, cumulativeReward float64, episodeNumber int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.actionsTaken, e.cumulativeReward, e.episodeNumber
}

// History returns a copy of the recorded actions for this episode.
func (e *EpisodeState) History() []datatypes.ActionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]datatypes.ActionRecord, len(e.history))
	copy(out, e.history)
	return out
}

// Reset zeroes the action count, reward, and history, and advances the
// episode number. Returns the new episode number.
func (e *EpisodeState) Reset() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actionsTaken = 0
	e.cumulativeReward = 0
	e.history = nil
	e.episodeNumber++
	return e.episodeNumber
}
