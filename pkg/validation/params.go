// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for
// user-provided query parameters.
//
// Filter values arrive on the URL and end up selecting storage scans,
// so they are validated against the closed enums before use. Invalid
// filters become a 400 at the transport layer instead of an empty
// result set that hides agent bugs.
package validation

import (
	"fmt"
	"strings"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// SanitizeStatusFilter normalizes and validates a status query
// parameter. Empty input means "no filter" and passes through.
//
// Example:
//
//	status, err := validation.SanitizeStatusFilter(c.Query("status"))
//	if err != nil {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	    return
//	}
func SanitizeStatusFilter(raw string) (datatypes.TaskStatus, error) {
	normalized := datatypes.TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if normalized == "" {
		return "", nil
	}
	if !normalized.Valid() {
		return "", fmt.Errorf("invalid status filter: %q (must be one of todo, in_progress, completed, archived)", raw)
	}
	return normalized, nil
}

// SanitizePriorityFilter normalizes and validates a priority query
// parameter. Empty input means "no filter" and passes through.
func SanitizePriorityFilter(raw string) (datatypes.TaskPriority, error) {
	normalized := datatypes.TaskPriority(strings.ToLower(strings.TrimSpace(raw)))
	if normalized == "" {
		return "", nil
	}
	if !normalized.Valid() {
		return "", fmt.Errorf("invalid priority filter: %q (must be one of low, medium, high, urgent)", raw)
	}
	return normalized, nil
}
