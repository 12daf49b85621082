// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"math/rand"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/taskgym-ai/taskgym/services/environment/observability"
	"github.com/taskgym-ai/taskgym/services/environment/rules"
	"github.com/taskgym-ai/taskgym/services/environment/store"
)

// GetEnvironmentState returns the aggregate observation an agent polls
// between actions.
func GetEnvironmentState(ts *store.TaskStore, v *rules.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := ts.List("", "")
		if err != nil {
			slog.Error("failed to load tasks for state", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load environment state"})
			return
		}
		c.JSON(http.StatusOK, v.Observe(tasks))
	}
}

// ValidateRule grades one rule against the current board.
//
// Unknown rule names are not an HTTP error: the agent probing a rule
// that does not exist is a zero-reward environment signal, so the
// response is still 200 with a failing verdict.
func ValidateRule(ts *store.TaskStore, v *rules.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := rules.Name(c.Param("taskName"))

		tasks, err := ts.List("", "")
		if err != nil {
			slog.Error("failed to load tasks for validation", "rule", string(name), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
			return
		}

		known := v.HasRule(name)
		result := v.Validate(name, tasks)
		observability.RecordValidation(string(name), known, result.Completed)
		observability.SetCumulativeReward(v.CumulativeReward())

		slog.Info("rule validated",
			"rule", string(name),
			"completed", result.Completed,
			"reward", result.Reward)
		c.JSON(http.StatusOK, result)
	}
}

// ListRules returns every rule's name, description, reward, and
// difficulty so agents can discover the objective space. The response
// is a bare JSON array.
func ListRules(v *rules.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, v.ListRules())
	}
}

// ResetEnvironment wipes the board, reseeds it, and starts a new
// episode.
//
// Concurrent resets are serialized: the wipe-and-reseed sequence is
// not atomic at the store level (two interleaved resets would each see
// an empty board and double-seed it), and the seeding rand.Rand is not
// safe for concurrent use.
func ResetEnvironment(ts *store.TaskStore, v *rules.Validator, rng *rand.Rand) gin.HandlerFunc {
	var mu sync.Mutex
	return func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()

		if err := ts.DeleteAll(); err != nil {
			slog.Error("failed to clear tasks on reset", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset environment"})
			return
		}
		seeded, err := ts.Populate(rng)
		if err != nil {
			slog.Error("failed to reseed tasks on reset", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset environment"})
			return
		}

		episode := v.Reset()
		observability.RecordEpisodeReset()
		observability.SetCumulativeReward(0)

		slog.Info("environment reset", "episode", episode, "seeded_tasks", seeded)
		c.JSON(http.StatusOK, gin.H{"message": "Environment reset successfully"})
	}
}
