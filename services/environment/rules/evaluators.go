// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// Tag comparison is case-insensitive everywhere. Some rules match tags
// exactly (bug, feature, debt sets), others by substring (sprint, doc).

// hasTagExact reports whether the task carries one of the given tags,
// compared case-insensitively. The allowed set must be lowercase.
func hasTagExact(t datatypes.Task, allowed ...string) bool {
	for _, tag := range t.Tags {
		lower := strings.ToLower(tag)
		for _, want := range allowed {
			if lower == want {
				return true
			}
		}
	}
	return false
}

// hasTagContaining reports whether any tag contains the given lowercase
// substring, compared case-insensitively.
func hasTagContaining(t datatypes.Task, substr string) bool {
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), substr) {
			return true
		}
	}
	return false
}

func countByStatus(tasks []datatypes.Task, status datatypes.TaskStatus) int {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// -----------------------------------------------------------------------------
// Evaluators
// -----------------------------------------------------------------------------

// evalCreateUrgentTask: at least one task with urgent priority exists.
func evalCreateUrgentTask(_ time.Time, tasks []datatypes.Task) Outcome {
	urgent := 0
	for _, t := range tasks {
		if t.Priority == datatypes.PriorityUrgent {
			urgent++
		}
	}
	completed := urgent > 0

	feedback := "❌ No urgent tasks found. Create a task with 'urgent' priority."
	if completed {
		feedback = fmt.Sprintf("✅ Found %d urgent task(s)", urgent)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"urgent_task_count": urgent},
	}
}

// evalCompleteThreeTasks: at least 3 tasks have status completed.
func evalCompleteThreeTasks(_ time.Time, tasks []datatypes.Task) Outcome {
	count := countByStatus(tasks, datatypes.StatusCompleted)
	completed := count >= 3

	feedback := fmt.Sprintf("❌ Only %d tasks completed. Need 3 or more.", count)
	if completed {
		feedback = fmt.Sprintf("✅ %d tasks completed (target: 3)", count)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"completed_count": count, "target": 3},
	}
}

// evalOrganizeByPriority: every high-priority task is in_progress or
// completed. An empty high-priority subset FAILS - a board with no high
// priority tasks has not been organized, merely emptied.
func evalOrganizeByPriority(_ time.Time, tasks []datatypes.Task) Outcome {
	highPriority := 0
	organized := 0
	for _, t := range tasks {
		if t.Priority != datatypes.PriorityHigh {
			continue
		}
		highPriority++
		if t.Status == datatypes.StatusInProgress || t.Status == datatypes.StatusCompleted {
			organized++
		}
	}
	completed := highPriority > 0 && organized == highPriority

	feedback := fmt.Sprintf("❌ %d high priority tasks still in 'todo' state", highPriority-organized)
	if completed {
		feedback = fmt.Sprintf("✅ All %d high priority tasks are organized", highPriority)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"high_priority_count": highPriority, "organized_count": organized},
	}
}

// evalClearOverdueTasks: no task is past due and still active.
// No overdue tasks at all is a vacuous success.
func evalClearOverdueTasks(now time.Time, tasks []datatypes.Task) Outcome {
	overdue := 0
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(now) &&
			t.Status != datatypes.StatusCompleted && t.Status != datatypes.StatusArchived {
			overdue++
		}
	}
	completed := overdue == 0

	feedback := fmt.Sprintf("❌ %d overdue task(s) need attention", overdue)
	if completed {
		feedback = "✅ No overdue tasks remaining"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"overdue_count": overdue},
	}
}

// evalAssignAllTasks: every task has an assignee, and the board is not
// empty. Zero tasks fails - there is nothing to have assigned.
func evalAssignAllTasks(_ time.Time, tasks []datatypes.Task) Outcome {
	unassigned := 0
	for _, t := range tasks {
		if t.AssignedTo == "" {
			unassigned++
		}
	}
	completed := unassigned == 0 && len(tasks) > 0

	feedback := fmt.Sprintf("❌ %d task(s) need assignment", unassigned)
	if completed {
		feedback = "✅ All tasks are assigned"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"unassigned_count": unassigned, "total_tasks": len(tasks)},
	}
}

// evalAchieve80Completion: completed/total >= 0.80. Empty board fails.
func evalAchieve80Completion(_ time.Time, tasks []datatypes.Task) Outcome {
	if len(tasks) == 0 {
		return Outcome{
			Completed: false,
			Feedback:  "❌ No tasks exist",
			Details:   map[string]any{"completion_rate": 0.0},
		}
	}

	completedCount := countByStatus(tasks, datatypes.StatusCompleted)
	rate := float64(completedCount) / float64(len(tasks)) * 100
	completed := rate >= 80.0

	feedback := fmt.Sprintf("❌ Completion rate: %.1f%% (target: 80%%)", rate)
	if completed {
		feedback = fmt.Sprintf("✅ Completion rate: %.1f%%", rate)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details: map[string]any{
			"completion_rate": rate,
			"completed_count": completedCount,
			"total_count":     len(tasks),
		},
	}
}

// evalOrganizeWithTags: every task carries at least 2 tags, and the
// board is not empty.
func evalOrganizeWithTags(_ time.Time, tasks []datatypes.Task) Outcome {
	tagged := 0
	for _, t := range tasks {
		if len(t.Tags) >= 2 {
			tagged++
		}
	}
	completed := len(tasks) > 0 && tagged == len(tasks)

	feedback := fmt.Sprintf("❌ %d task(s) need more tags", len(tasks)-tagged)
	if completed {
		feedback = "✅ All tasks have 2+ tags"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"tasks_with_tags": tagged, "total_tasks": len(tasks)},
	}
}

// evalArchiveCompleted: no task remains in the completed status.
func evalArchiveCompleted(_ time.Time, tasks []datatypes.Task) Outcome {
	remaining := countByStatus(tasks, datatypes.StatusCompleted)
	completed := remaining == 0

	feedback := fmt.Sprintf("❌ %d completed task(s) need archiving", remaining)
	if completed {
		feedback = "✅ All completed tasks are archived"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"completed_not_archived": remaining},
	}
}

// evalBalanceWorkload: among assignees with at least one non-archived
// assigned task, max(count)-min(count) <= 2. Requires at least two
// distinct assignees; a difference of exactly 2 is the passing boundary.
func evalBalanceWorkload(_ time.Time, tasks []datatypes.Task) Outcome {
	workload := make(map[string]int)
	assigned := 0
	for _, t := range tasks {
		if t.AssignedTo == "" || t.Status == datatypes.StatusArchived {
			continue
		}
		workload[t.AssignedTo]++
		assigned++
	}

	if assigned == 0 {
		return Outcome{
			Completed: false,
			Feedback:  "❌ No assigned tasks found",
			Details:   map[string]any{},
		}
	}
	if len(workload) < 2 {
		return Outcome{
			Completed: false,
			Feedback:  "❌ Need at least 2 team members with tasks",
			Details:   map[string]any{"team_members": len(workload)},
		}
	}

	maxCount, minCount := 0, assigned
	for _, n := range workload {
		if n > maxCount {
			maxCount = n
		}
		if n < minCount {
			minCount = n
		}
	}
	maxDiff := maxCount - minCount
	completed := maxDiff <= 2

	feedback := fmt.Sprintf("❌ Workload imbalanced (difference: %d, max allowed: 2)", maxDiff)
	if completed {
		feedback = fmt.Sprintf("✅ Workload balanced (max difference: %d)", maxDiff)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"workload": workload, "max_difference": maxDiff},
	}
}

// evalPrioritizeUrgentItems: every urgent task is in_progress. No
// urgent tasks at all is a vacuous success.
func evalPrioritizeUrgentItems(_ time.Time, tasks []datatypes.Task) Outcome {
	urgent := 0
	inProgress := 0
	for _, t := range tasks {
		if t.Priority != datatypes.PriorityUrgent {
			continue
		}
		urgent++
		if t.Status == datatypes.StatusInProgress {
			inProgress++
		}
	}

	if urgent == 0 {
		return Outcome{
			Completed: true,
			Feedback:  "✅ No urgent tasks (or create some to complete this task)",
			Details:   map[string]any{"urgent_count": 0},
		}
	}

	completed := inProgress == urgent
	feedback := fmt.Sprintf("❌ %d urgent task(s) not in progress", urgent-inProgress)
	if completed {
		feedback = fmt.Sprintf("✅ All %d urgent tasks are in progress", urgent)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"urgent_total": urgent, "urgent_in_progress": inProgress},
	}
}

// evalCreateSprintBacklog: at least 5 tasks carry a tag containing
// "sprint" AND have an assignee.
func evalCreateSprintBacklog(_ time.Time, tasks []datatypes.Task) Outcome {
	sprint := 0
	for _, t := range tasks {
		if t.AssignedTo != "" && hasTagContaining(t, "sprint") {
			sprint++
		}
	}
	completed := sprint >= 5

	feedback := fmt.Sprintf("❌ Only %d sprint tasks created (need 5+)", sprint)
	if completed {
		feedback = fmt.Sprintf("✅ Sprint backlog created with %d tasks", sprint)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"sprint_task_count": sprint, "target": 5},
	}
}

// evalEliminateTechnicalDebt: no active task tagged refactor,
// technical-debt, or debt remains.
func evalEliminateTechnicalDebt(_ time.Time, tasks []datatypes.Task) Outcome {
	remaining := 0
	for _, t := range tasks {
		if t.Status == datatypes.StatusCompleted || t.Status == datatypes.StatusArchived {
			continue
		}
		if hasTagExact(t, "refactor", "technical-debt", "debt") {
			remaining++
		}
	}
	completed := remaining == 0

	feedback := fmt.Sprintf("❌ %d technical debt task(s) remaining", remaining)
	if completed {
		feedback = "✅ All technical debt eliminated"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"debt_tasks_remaining": remaining},
	}
}

// evalAchieveZeroBugs: no active task tagged "bug" remains.
func evalAchieveZeroBugs(_ time.Time, tasks []datatypes.Task) Outcome {
	open := 0
	for _, t := range tasks {
		if t.Status == datatypes.StatusCompleted || t.Status == datatypes.StatusArchived {
			continue
		}
		if hasTagExact(t, "bug") {
			open++
		}
	}
	completed := open == 0

	feedback := fmt.Sprintf("❌ %d bug(s) still open", open)
	if completed {
		feedback = "✅ Zero bugs! All bug tasks resolved"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"bugs_remaining": open},
	}
}

// evalOptimizeTaskFlow: strict ordering todo < in_progress < completed.
func evalOptimizeTaskFlow(_ time.Time, tasks []datatypes.Task) Outcome {
	todo := countByStatus(tasks, datatypes.StatusTodo)
	inProgress := countByStatus(tasks, datatypes.StatusInProgress)
	done := countByStatus(tasks, datatypes.StatusCompleted)
	completed := todo < inProgress && inProgress < done

	feedback := fmt.Sprintf("❌ Flow needs optimization: todo(%d), in_progress(%d), completed(%d)",
		todo, inProgress, done)
	if completed {
		feedback = fmt.Sprintf("✅ Optimal flow: todo(%d) < in_progress(%d) < completed(%d)",
			todo, inProgress, done)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"todo": todo, "in_progress": inProgress, "completed": done},
	}
}

// evalTeamCollaboration: every distinct assignee has at least one task
// in each of todo, in_progress, and completed. Fewer than two distinct
// assignees fails outright.
func evalTeamCollaboration(_ time.Time, tasks []datatypes.Task) Outcome {
	statusesByMember := make(map[string]map[datatypes.TaskStatus]bool)
	for _, t := range tasks {
		if t.AssignedTo == "" {
			continue
		}
		if statusesByMember[t.AssignedTo] == nil {
			statusesByMember[t.AssignedTo] = make(map[datatypes.TaskStatus]bool)
		}
		statusesByMember[t.AssignedTo][t.Status] = true
	}

	if len(statusesByMember) < 2 {
		return Outcome{
			Completed: false,
			Feedback:  "❌ Need at least 2 team members with tasks",
			Details:   map[string]any{},
		}
	}

	score := make(map[string]bool, len(statusesByMember))
	lacking := 0
	for member, statuses := range statusesByMember {
		hasAll := statuses[datatypes.StatusTodo] &&
			statuses[datatypes.StatusInProgress] &&
			statuses[datatypes.StatusCompleted]
		score[member] = hasAll
		if !hasAll {
			lacking++
		}
	}
	completed := lacking == 0

	feedback := fmt.Sprintf("❌ %d team member(s) need tasks in all statuses", lacking)
	if completed {
		feedback = "✅ Full team collaboration achieved"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"collaboration_score": score},
	}
}

// evalDeadlineManagement: every task due within the next 3 days
// (inclusive window) is in_progress or completed. None due soon is a
// vacuous success.
func evalDeadlineManagement(now time.Time, tasks []datatypes.Task) Outcome {
	horizon := now.Add(72 * time.Hour)
	upcoming := 0
	managed := 0
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		if due.Before(now) || due.After(horizon) {
			continue
		}
		upcoming++
		if t.Status == datatypes.StatusInProgress || t.Status == datatypes.StatusCompleted {
			managed++
		}
	}

	if upcoming == 0 {
		return Outcome{
			Completed: true,
			Feedback:  "✅ No upcoming deadlines",
			Details:   map[string]any{"upcoming_count": 0},
		}
	}

	completed := managed == upcoming
	feedback := fmt.Sprintf("❌ %d upcoming task(s) not in progress", upcoming-managed)
	if completed {
		feedback = fmt.Sprintf("✅ All %d upcoming deadlines are managed", upcoming)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"upcoming_total": upcoming, "managed": managed},
	}
}

// evalQualityAssurance: every completed task carries a QA tag. Zero
// completed tasks fails - there is nothing to have assured.
func evalQualityAssurance(_ time.Time, tasks []datatypes.Task) Outcome {
	completedTotal := 0
	withQA := 0
	for _, t := range tasks {
		if t.Status != datatypes.StatusCompleted {
			continue
		}
		completedTotal++
		if hasTagExact(t, "tested", "reviewed", "qa", "approved") {
			withQA++
		}
	}

	if completedTotal == 0 {
		return Outcome{
			Completed: false,
			Feedback:  "❌ No completed tasks to validate",
			Details:   map[string]any{},
		}
	}

	completed := withQA == completedTotal
	feedback := fmt.Sprintf("❌ %d completed task(s) missing QA tags", completedTotal-withQA)
	if completed {
		feedback = fmt.Sprintf("✅ All %d completed tasks have QA tags", completedTotal)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"completed_total": completedTotal, "with_qa": withQA},
	}
}

// evalPerfectOrganization: every task has an assignee, at least 2 tags,
// and a due date. Empty board fails.
func evalPerfectOrganization(_ time.Time, tasks []datatypes.Task) Outcome {
	if len(tasks) == 0 {
		return Outcome{
			Completed: false,
			Feedback:  "❌ No tasks exist",
			Details:   map[string]any{},
		}
	}

	organized := 0
	for _, t := range tasks {
		if t.AssignedTo != "" && len(t.Tags) >= 2 && t.DueDate != nil {
			organized++
		}
	}
	completed := organized == len(tasks)

	feedback := fmt.Sprintf("❌ %d task(s) need: assignee, 2+ tags, and due date", len(tasks)-organized)
	if completed {
		feedback = fmt.Sprintf("✅ All %d tasks are perfectly organized", len(tasks))
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"total_tasks": len(tasks), "organized": organized},
	}
}

// evalReduceWIP: at most 5 tasks in progress.
func evalReduceWIP(_ time.Time, tasks []datatypes.Task) Outcome {
	wip := countByStatus(tasks, datatypes.StatusInProgress)
	completed := wip <= 5

	feedback := fmt.Sprintf("❌ Too much WIP: %d tasks (max: 5)", wip)
	if completed {
		feedback = fmt.Sprintf("✅ WIP limited to %d tasks", wip)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"wip_count": wip, "max_allowed": 5},
	}
}

// evalFeatureCompletion: every task tagged "feature" is completed.
// No feature tasks at all is a vacuous success.
func evalFeatureCompletion(_ time.Time, tasks []datatypes.Task) Outcome {
	features := 0
	done := 0
	for _, t := range tasks {
		if !hasTagExact(t, "feature") {
			continue
		}
		features++
		if t.Status == datatypes.StatusCompleted {
			done++
		}
	}

	if features == 0 {
		return Outcome{
			Completed: true,
			Feedback:  "✅ No feature tasks exist",
			Details:   map[string]any{},
		}
	}

	completed := done == features
	feedback := fmt.Sprintf("❌ %d feature(s) still in progress", features-done)
	if completed {
		feedback = fmt.Sprintf("✅ All %d features completed", features)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"total_features": features, "completed": done},
	}
}

// evalCleanSlate: every task is archived, and the board is not empty.
func evalCleanSlate(_ time.Time, tasks []datatypes.Task) Outcome {
	nonArchived := 0
	for _, t := range tasks {
		if t.Status != datatypes.StatusArchived {
			nonArchived++
		}
	}
	completed := nonArchived == 0 && len(tasks) > 0

	feedback := fmt.Sprintf("❌ %d task(s) still active (archive or complete them)", nonArchived)
	if completed {
		feedback = "✅ Clean slate achieved - all tasks archived"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"non_archived_count": nonArchived, "total_tasks": len(tasks)},
	}
}

// evalMilestoneAchievement: at least 10 tasks completed.
func evalMilestoneAchievement(_ time.Time, tasks []datatypes.Task) Outcome {
	count := countByStatus(tasks, datatypes.StatusCompleted)
	completed := count >= 10

	feedback := fmt.Sprintf("❌ %d/10 tasks completed", count)
	if completed {
		feedback = fmt.Sprintf("✅ Milestone! %d tasks completed", count)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"completed_count": count, "target": 10},
	}
}

// evalDocumentationComplete: every task with a tag containing "doc" is
// completed. No doc tasks at all is a vacuous success.
func evalDocumentationComplete(_ time.Time, tasks []datatypes.Task) Outcome {
	docs := 0
	done := 0
	for _, t := range tasks {
		if !hasTagContaining(t, "doc") {
			continue
		}
		docs++
		if t.Status == datatypes.StatusCompleted {
			done++
		}
	}

	if docs == 0 {
		return Outcome{
			Completed: true,
			Feedback:  "✅ No documentation tasks exist",
			Details:   map[string]any{},
		}
	}

	completed := done == docs
	feedback := fmt.Sprintf("❌ %d documentation task(s) incomplete", docs-done)
	if completed {
		feedback = fmt.Sprintf("✅ All %d documentation tasks completed", docs)
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details:   map[string]any{"total_docs": docs, "completed": done},
	}
}

// evalNoLowPriorityInProgress: fails only when a high or urgent task is
// waiting in todo while a low-priority task occupies in_progress.
func evalNoLowPriorityInProgress(_ time.Time, tasks []datatypes.Task) Outcome {
	highWaiting := 0
	lowInProgress := 0
	for _, t := range tasks {
		if t.Status == datatypes.StatusTodo &&
			(t.Priority == datatypes.PriorityHigh || t.Priority == datatypes.PriorityUrgent) {
			highWaiting++
		}
		if t.Status == datatypes.StatusInProgress && t.Priority == datatypes.PriorityLow {
			lowInProgress++
		}
	}
	completed := highWaiting == 0 || lowInProgress == 0

	feedback := fmt.Sprintf("❌ %d low priority task(s) in progress while %d high priority task(s) wait",
		lowInProgress, highWaiting)
	if completed {
		feedback = "✅ Priority management optimal"
	}
	return Outcome{
		Completed: completed,
		Feedback:  feedback,
		Details: map[string]any{
			"high_priority_waiting":    highWaiting,
			"low_priority_in_progress": lowInProgress,
		},
	}
}
