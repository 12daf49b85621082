// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the wire and domain types shared across the
// environment service: task records, CRUD request bodies, and the RL
// observation/verdict shapes consumed by training agents.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Enumerations
// =============================================================================

// TaskStatus is the lifecycle state of a task.
// The set of values is closed; persistence and request binding both
// reject anything outside it.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusArchived   TaskStatus = "archived"
)

// Valid reports whether s is a member of the closed status set.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// TaskPriority is the urgency classification of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a member of the closed priority set.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// =============================================================================
// Task Record
// =============================================================================

// Task is the unit the environment evaluates rules over.
//
// # Description
//
// Tasks are owned by the store; the rules engine only ever reads
// snapshot slices of them. Status and Priority are always members of
// their enumerated sets - enforced at the request-binding and store
// boundaries, assumed everywhere downstream.
//
// # Fields
//
//   - ID: Unique identifier assigned by the store (UUID string)
//   - Tags: Ordered, may be empty, no uniqueness requirement
//   - AssignedTo: Empty string means unassigned
//   - DueDate: Nil means no due date
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Tags        []string     `json:"tags"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// =============================================================================
// CRUD Request Bodies
// =============================================================================

// TaskCreateRequest is the POST /api/tasks body.
// Status defaults to "todo" and Priority to "medium" when omitted.
type TaskCreateRequest struct {
	Title       string       `json:"title" binding:"required,min=1,max=200"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority    TaskPriority `json:"priority" binding:"omitempty,taskpriority"`
	Tags        []string     `json:"tags"`
	AssignedTo  string       `json:"assigned_to"`
	DueDate     *time.Time   `json:"due_date"`
}

// TaskUpdateRequest is the PUT /api/tasks/:taskId body. All fields are
// optional; nil means "leave unchanged" (exclude-unset semantics).
type TaskUpdateRequest struct {
	Title       *string       `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string       `json:"description"`
	Status      *TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority    *TaskPriority `json:"priority" binding:"omitempty,taskpriority"`
	Tags        *[]string     `json:"tags"`
	AssignedTo  *string       `json:"assigned_to"`
	DueDate     *time.Time    `json:"due_date"`
}

// Fields returns the set fields as a small payload map, suitable for
// action tracking. Only non-nil fields appear.
func (r TaskUpdateRequest) Fields() map[string]any {
	updates := make(map[string]any)
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Status != nil {
		updates["status"] = string(*r.Status)
	}
	if r.Priority != nil {
		updates["priority"] = string(*r.Priority)
	}
	if r.Tags != nil {
		updates["tags"] = *r.Tags
	}
	if r.AssignedTo != nil {
		updates["assigned_to"] = *r.AssignedTo
	}
	if r.DueDate != nil {
		updates["due_date"] = r.DueDate.Format(time.RFC3339)
	}
	return updates
}

// =============================================================================
// Binding Validators
// =============================================================================

// RegisterValidations installs the custom "taskstatus" and
// "taskpriority" binding tags on a validator engine. Called once at
// service startup against gin's binding validator.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return TaskStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
		return TaskPriority(fl.Field().String()).Valid()
	})
}
