// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// agent plays scripted strategies against the environment.
//
// The server re-credits reward on every successful validation, so the
// agent de-duplicates banked rules itself: each rule counts toward
// totalReward at most once per episode.
type agent struct {
	client *envClient
	rng    *rand.Rand
	delay  time.Duration

	totalReward float64
	banked      map[string]bool
}

type strategy struct {
	name string
	run  func(*agent) error
}

var strategies = []strategy{
	{"create_urgent_task", (*agent).attemptCreateUrgentTask},
	{"complete_three_tasks", (*agent).attemptCompleteThreeTasks},
	{"assign_all_tasks", (*agent).attemptAssignAllTasks},
	{"organize_by_priority", (*agent).attemptOrganizeByPriority},
}

var teamMembers = []string{"Alice Chen", "Bob Smith", "Carol Williams", "David Brown"}

func runEpisodes(_ *cobra.Command, _ []string) error {
	client := newEnvClient(serverURL, authToken)
	if err := client.health(); err != nil {
		return fmt.Errorf("environment not reachable at %s: %w", serverURL, err)
	}

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	a := &agent{
		client: client,
		rng:    rand.New(rand.NewSource(rngSeed)),
		delay:  time.Duration(delay) * time.Millisecond,
	}

	for i := 0; i < episodes; i++ {
		if err := a.playEpisode(); err != nil {
			return fmt.Errorf("episode %d: %w", i+1, err)
		}
	}
	return nil
}

func listRules(_ *cobra.Command, _ []string) error {
	client := newEnvClient(serverURL, authToken)
	rules, err := client.rules()
	if err != nil {
		return err
	}
	for _, r := range rules {
		fmt.Printf("%-28s %3.0f pts  %-9s %s\n", r.Name, r.Reward, r.Difficulty, r.Description)
	}
	return nil
}

func (a *agent) playEpisode() error {
	fmt.Println("🚀 Starting new episode")
	if err := a.client.reset(); err != nil {
		return fmt.Errorf("reset environment: %w", err)
	}
	a.totalReward = 0.0
	a.banked = make(map[string]bool)

	state, err := a.client.state()
	if err != nil {
		return fmt.Errorf("observe state: %w", err)
	}
	fmt.Printf("📊 Initial state: %d tasks, %.1f%% complete, episode %d\n",
		state.TotalTasks, state.CompletionRate, state.EpisodeNumber)

	for _, st := range strategies {
		fmt.Printf("\n🎯 Attempting: %s\n", st.name)
		if err := st.run(a); err != nil {
			fmt.Printf("   ❌ Error: %v\n", err)
		}
		time.Sleep(a.delay)
	}

	final, err := a.client.state()
	if err != nil {
		return fmt.Errorf("observe final state: %w", err)
	}
	fmt.Printf("\n📈 Episode summary: reward %.0f, %d actions, %.1f%% complete\n",
		a.totalReward, final.ActionsTaken, final.CompletionRate)
	return nil
}

// bank validates a rule and credits its reward once per episode.
func (a *agent) bank(rule string) error {
	result, err := a.client.validate(rule)
	if err != nil {
		return err
	}
	if result.Completed && !a.banked[rule] {
		a.totalReward += result.Reward
		a.banked[rule] = true
		fmt.Printf("   ✅ +%.0f points: %s\n", result.Reward, result.Feedback)
	} else if !result.Completed {
		fmt.Printf("   %s\n", result.Feedback)
	}
	return nil
}

func (a *agent) attemptCreateUrgentTask() error {
	req := datatypes.TaskCreateRequest{
		Title:       fmt.Sprintf("Agent-created urgent task %d", 1000+a.rng.Intn(9000)),
		Description: "This task was created by the demo agent",
		Status:      datatypes.StatusTodo,
		Priority:    datatypes.PriorityUrgent,
		Tags:        []string{"agent-created", "urgent"},
		AssignedTo:  "Demo Agent",
	}
	if _, err := a.client.createTask(req); err != nil {
		return err
	}
	return a.bank("create_urgent_task")
}

func (a *agent) attemptCompleteThreeTasks() error {
	tasks, err := a.client.listTasks("")
	if err != nil {
		return err
	}

	completed := datatypes.StatusCompleted
	done := 0
	for _, t := range tasks {
		if t.Status == datatypes.StatusCompleted || t.Status == datatypes.StatusArchived {
			continue
		}
		fmt.Printf("   Completing task: %s\n", t.Title)
		if _, err := a.client.updateTask(t.ID, datatypes.TaskUpdateRequest{Status: &completed}); err != nil {
			return err
		}
		done++
		if done == 3 {
			break
		}
	}
	return a.bank("complete_three_tasks")
}

func (a *agent) attemptAssignAllTasks() error {
	tasks, err := a.client.listTasks("")
	if err != nil {
		return err
	}

	for _, t := range tasks {
		if t.AssignedTo != "" {
			continue
		}
		assignee := teamMembers[a.rng.Intn(len(teamMembers))]
		fmt.Printf("   Assigning %q to %s\n", t.Title, assignee)
		if _, err := a.client.updateTask(t.ID, datatypes.TaskUpdateRequest{AssignedTo: &assignee}); err != nil {
			return err
		}
	}
	return a.bank("assign_all_tasks")
}

func (a *agent) attemptOrganizeByPriority() error {
	tasks, err := a.client.listTasks("todo")
	if err != nil {
		return err
	}

	inProgress := datatypes.StatusInProgress
	for _, t := range tasks {
		if t.Priority != datatypes.PriorityHigh {
			continue
		}
		fmt.Printf("   Moving %q to in_progress\n", t.Title)
		if _, err := a.client.updateTask(t.ID, datatypes.TaskUpdateRequest{Status: &inProgress}); err != nil {
			return err
		}
	}
	return a.bank("organize_by_priority")
}
