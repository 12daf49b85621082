// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the Gin HTTP handlers for the environment
// service: task CRUD plus the RL surface (state, validate, rules,
// reset).
//
// Mutating task handlers record the action against the current episode
// so the agent's action count and history stay accurate.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskgym-ai/taskgym/pkg/validation"
	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
	"github.com/taskgym-ai/taskgym/services/environment/observability"
	"github.com/taskgym-ai/taskgym/services/environment/rules"
	"github.com/taskgym-ai/taskgym/services/environment/store"
)

func ListTasks(ts *store.TaskStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := validation.SanitizeStatusFilter(c.Query("status"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		priority, err := validation.SanitizePriorityFilter(c.Query("priority"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tasks, err := ts.List(status, priority)
		if err != nil {
			slog.Error("failed to list tasks", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func GetTask(ts *store.TaskStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("taskId")
		task, err := ts.Get(id)
		if errors.Is(err, store.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		if err != nil {
			slog.Error("failed to get task", "task_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

func CreateTask(ts *store.TaskStore, v *rules.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.TaskCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		task, err := ts.Create(req)
		if err != nil {
			slog.Error("failed to create task", "title", req.Title, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
			return
		}

		v.TrackAction("create_task", map[string]any{
			"task_id":  task.ID,
			"title":    task.Title,
			"priority": string(task.Priority),
		})
		observability.RecordAction("create_task")

		slog.Info("task created", "task_id", task.ID, "title", task.Title)
		c.JSON(http.StatusOK, task)
	}
}

func UpdateTask(ts *store.TaskStore, v *rules.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("taskId")

		var req datatypes.TaskUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		task, err := ts.Update(id, req)
		if errors.Is(err, store.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		if err != nil {
			slog.Error("failed to update task", "task_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
			return
		}

		v.TrackAction("update_task", map[string]any{
			"task_id": id,
			"updates": req.Fields(),
		})
		observability.RecordAction("update_task")

		c.JSON(http.StatusOK, task)
	}
}

func DeleteTask(ts *store.TaskStore, v *rules.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("taskId")

		err := ts.Delete(id)
		if errors.Is(err, store.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		if err != nil {
			slog.Error("failed to delete task", "task_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
			return
		}

		v.TrackAction("delete_task", map[string]any{"task_id": id})
		observability.RecordAction("delete_task")

		c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
	}
}
