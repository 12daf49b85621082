// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	_ "embed"
	"fmt"
	"math/rand"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// seedTasksYAML is the board the environment starts every episode
// from. Compiled into the binary so a fresh deployment needs no data
// files.
//
//go:embed seed_tasks.yaml
var seedTasksYAML []byte

type seedTemplate struct {
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	Priority    datatypes.TaskPriority `yaml:"priority"`
	Status      datatypes.TaskStatus   `yaml:"status"`
	Tags        []string               `yaml:"tags"`
}

type seedFile struct {
	TeamMembers []string       `yaml:"team_members"`
	Tasks       []seedTemplate `yaml:"tasks"`
}

// dueOffsetDays is the outer bound, in days, of a randomized due date
// for each priority. Unknown priorities fall back to 14.
var dueOffsetDays = map[datatypes.TaskPriority]int{
	datatypes.PriorityUrgent: 1,
	datatypes.PriorityHigh:   5,
	datatypes.PriorityMedium: 14,
	datatypes.PriorityLow:    30,
}

// overdueFraction of seeded tasks get a past due date so overdue-based
// rules start in a failing state worth acting on.
const overdueFraction = 0.2

// Populate fills an empty store with the embedded seed board. Assignees,
// due dates, and timestamps are drawn from rng, so a seeded rng gives a
// reproducible board. No-op when the store already holds tasks.
//
// Returns the number of tasks created (0 when the store was non-empty).
func (s *TaskStore) Populate(rng *rand.Rand) (int, error) {
	count, err := s.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	var seed seedFile
	if err := yaml.Unmarshal(seedTasksYAML, &seed); err != nil {
		return 0, fmt.Errorf("decode embedded seed tasks: %w", err)
	}

	now := s.now().UTC()
	for _, tpl := range seed.Tasks {
		assignee := ""
		if len(seed.TeamMembers) > 0 {
			assignee = seed.TeamMembers[rng.Intn(len(seed.TeamMembers))]
		}

		offset, ok := dueOffsetDays[tpl.Priority]
		if !ok {
			offset = 14
		}
		var due time.Time
		if rng.Float64() < overdueFraction {
			due = now.AddDate(0, 0, -(1 + rng.Intn(5)))
		} else {
			due = now.AddDate(0, 0, 1+rng.Intn(offset))
		}

		task := datatypes.Task{
			Title:       tpl.Title,
			Description: tpl.Description,
			Status:      tpl.Status,
			Priority:    tpl.Priority,
			Tags:        tpl.Tags,
			AssignedTo:  assignee,
			DueDate:     &due,
			CreatedAt:   now.AddDate(0, 0, -(1 + rng.Intn(30))),
			UpdatedAt:   now.AddDate(0, 0, -rng.Intn(6)),
		}
		task.ID = newSeedID(rng)

		if err := s.put(task); err != nil {
			return 0, fmt.Errorf("seed task %q: %w", tpl.Title, err)
		}
	}
	return len(seed.Tasks), nil
}

// newSeedID builds a UUIDv4-shaped ID from rng so seeded boards are
// fully reproducible, unlike uuid.NewString which reads crypto/rand.
func newSeedID(rng *rand.Rand) string {
	var b [16]byte
	rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
