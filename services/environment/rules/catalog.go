// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rules implements the environment-feedback core: the fixed
// catalog of completion criteria, their evaluators, per-episode
// bookkeeping, and the Validator facade the transport layer talks to.
//
// The catalog is immutable for the lifetime of the process. Adding or
// removing a rule is a code change and a redeploy, never a runtime
// operation. Every evaluator is a pure function of the task snapshot it
// is handed plus an explicit evaluation time, so verdicts are
// deterministic and safe to use as a training signal.
package rules

import (
	"time"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// =============================================================================
// Rule Identity
// =============================================================================

// Name identifies one rule in the catalog. The set of names is closed;
// values outside it produce a failing verdict, not an error.
type Name string

const (
	CreateUrgentTask        Name = "create_urgent_task"
	CompleteThreeTasks      Name = "complete_three_tasks"
	OrganizeByPriority      Name = "organize_by_priority"
	ClearOverdueTasks       Name = "clear_overdue_tasks"
	AssignAllTasks          Name = "assign_all_tasks"
	Achieve80Completion     Name = "achieve_80_completion"
	OrganizeWithTags        Name = "organize_with_tags"
	ArchiveCompleted        Name = "archive_completed"
	BalanceWorkload         Name = "balance_workload"
	PrioritizeUrgentItems   Name = "prioritize_urgent_items"
	CreateSprintBacklog     Name = "create_sprint_backlog"
	EliminateTechnicalDebt  Name = "eliminate_technical_debt"
	AchieveZeroBugs         Name = "achieve_zero_bugs"
	OptimizeTaskFlow        Name = "optimize_task_flow"
	TeamCollaboration       Name = "team_collaboration"
	DeadlineManagement      Name = "deadline_management"
	QualityAssurance        Name = "quality_assurance"
	PerfectOrganization     Name = "perfect_organization"
	ReduceWIP               Name = "reduce_wip"
	FeatureCompletion       Name = "feature_completion"
	CleanSlate              Name = "clean_slate"
	MilestoneAchievement    Name = "milestone_achievement"
	DocumentationComplete   Name = "documentation_complete"
	NoLowPriorityInProgress Name = "no_low_priority_in_progress"
)

// Difficulty is the tier assigned to a rule for curriculum shaping.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

// =============================================================================
// Rule Definition
// =============================================================================

// Outcome is the raw result of running one evaluator against one
// snapshot. The facade layers the reward on top of it.
type Outcome struct {
	// Completed reports whether the rule's predicate holds.
	Completed bool

	// Feedback is a human-readable pass/fail summary with counts.
	// Success and failure use distinct wording.
	Feedback string

	// Details carries the counts the predicate was computed from,
	// keyed per rule, for observability and test assertions.
	Details map[string]any
}

// evalFunc evaluates one rule against a task snapshot at a given
// instant. Implementations must be pure: no hidden state, no side
// effects, deterministic for a given (now, tasks) pair.
type evalFunc func(now time.Time, tasks []datatypes.Task) Outcome

// Rule is one immutable catalog entry. Reward is always positive.
type Rule struct {
	Name        Name
	Description string
	Reward      float64
	Difficulty  Difficulty

	eval evalFunc
}

// Evaluate runs the rule's predicate against the snapshot.
func (r Rule) Evaluate(now time.Time, tasks []datatypes.Task) Outcome {
	return r.eval(now, tasks)
}

// Summary renders the rule as a catalog listing entry.
func (r Rule) Summary() datatypes.RuleSummary {
	return datatypes.RuleSummary{
		Name:        string(r.Name),
		Description: r.Description,
		Reward:      r.Reward,
		Difficulty:  string(r.Difficulty),
	}
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog is the process-wide, read-only registry of rule definitions.
// Safe for concurrent use without synchronization once built.
type Catalog struct {
	order []Name
	rules map[Name]Rule
}

// NewCatalog builds the fixed catalog of 24 rules. The table below is
// the single source of truth for descriptions, rewards, and tiers.
func NewCatalog() *Catalog {
	defs := []Rule{
		{Name: CreateUrgentTask, Description: "Create a new task with 'urgent' priority",
			Reward: 10.0, Difficulty: DifficultyEasy, eval: evalCreateUrgentTask},
		{Name: CompleteThreeTasks, Description: "Mark at least 3 tasks as completed",
			Reward: 15.0, Difficulty: DifficultyEasy, eval: evalCompleteThreeTasks},
		{Name: OrganizeByPriority, Description: "Ensure all high priority tasks are either in_progress or completed",
			Reward: 20.0, Difficulty: DifficultyMedium, eval: evalOrganizeByPriority},
		{Name: ClearOverdueTasks, Description: "Complete or delete all tasks with past due dates",
			Reward: 25.0, Difficulty: DifficultyMedium, eval: evalClearOverdueTasks},
		{Name: AssignAllTasks, Description: "Assign all unassigned tasks to team members",
			Reward: 15.0, Difficulty: DifficultyEasy, eval: evalAssignAllTasks},
		{Name: Achieve80Completion, Description: "Achieve at least 80% task completion rate",
			Reward: 30.0, Difficulty: DifficultyHard, eval: evalAchieve80Completion},
		{Name: OrganizeWithTags, Description: "Add at least 2 tags to every task for better organization",
			Reward: 20.0, Difficulty: DifficultyMedium, eval: evalOrganizeWithTags},
		{Name: ArchiveCompleted, Description: "Archive all completed tasks to clean up the board",
			Reward: 15.0, Difficulty: DifficultyEasy, eval: evalArchiveCompleted},
		{Name: BalanceWorkload, Description: "Distribute tasks evenly across all team members (max difference of 2 tasks)",
			Reward: 25.0, Difficulty: DifficultyMedium, eval: evalBalanceWorkload},
		{Name: PrioritizeUrgentItems, Description: "Ensure all urgent tasks are in_progress and have near due dates",
			Reward: 20.0, Difficulty: DifficultyMedium, eval: evalPrioritizeUrgentItems},
		{Name: CreateSprintBacklog, Description: "Create at least 5 new tasks with 'sprint' tags and assign them",
			Reward: 30.0, Difficulty: DifficultyHard, eval: evalCreateSprintBacklog},
		{Name: EliminateTechnicalDebt, Description: "Complete or archive all tasks tagged with 'refactor' or 'technical-debt'",
			Reward: 25.0, Difficulty: DifficultyMedium, eval: evalEliminateTechnicalDebt},
		{Name: AchieveZeroBugs, Description: "Complete or delete all tasks tagged with 'bug'",
			Reward: 35.0, Difficulty: DifficultyHard, eval: evalAchieveZeroBugs},
		{Name: OptimizeTaskFlow, Description: "Ensure todo < in_progress < completed (pipeline optimization)",
			Reward: 30.0, Difficulty: DifficultyHard, eval: evalOptimizeTaskFlow},
		{Name: TeamCollaboration, Description: "Ensure every team member has at least one task in each status category",
			Reward: 40.0, Difficulty: DifficultyVeryHard, eval: evalTeamCollaboration},
		{Name: DeadlineManagement, Description: "Ensure all tasks due within 3 days are in_progress or completed",
			Reward: 25.0, Difficulty: DifficultyMedium, eval: evalDeadlineManagement},
		{Name: QualityAssurance, Description: "Add 'tested' or 'reviewed' tags to all completed tasks",
			Reward: 20.0, Difficulty: DifficultyMedium, eval: evalQualityAssurance},
		{Name: PerfectOrganization, Description: "All tasks must have: assignee, 2+ tags, and due date",
			Reward: 35.0, Difficulty: DifficultyHard, eval: evalPerfectOrganization},
		{Name: ReduceWIP, Description: "Reduce work-in-progress to maximum 5 tasks",
			Reward: 20.0, Difficulty: DifficultyMedium, eval: evalReduceWIP},
		{Name: FeatureCompletion, Description: "Complete all tasks tagged with 'feature'",
			Reward: 30.0, Difficulty: DifficultyHard, eval: evalFeatureCompletion},
		{Name: CleanSlate, Description: "Archive or complete all tasks - only archived tasks should remain",
			Reward: 50.0, Difficulty: DifficultyVeryHard, eval: evalCleanSlate},
		{Name: MilestoneAchievement, Description: "Complete at least 10 tasks in a single episode",
			Reward: 40.0, Difficulty: DifficultyVeryHard, eval: evalMilestoneAchievement},
		{Name: DocumentationComplete, Description: "All tasks tagged 'documentation' must be completed",
			Reward: 20.0, Difficulty: DifficultyEasy, eval: evalDocumentationComplete},
		{Name: NoLowPriorityInProgress, Description: "Ensure no low priority tasks are in_progress when high priority tasks exist",
			Reward: 25.0, Difficulty: DifficultyMedium, eval: evalNoLowPriorityInProgress},
	}

	c := &Catalog{
		order: make([]Name, 0, len(defs)),
		rules: make(map[Name]Rule, len(defs)),
	}
	for _, def := range defs {
		c.order = append(c.order, def.Name)
		c.rules[def.Name] = def
	}
	return c
}

// Lookup returns the rule definition for name, and whether it exists.
// It never evaluates anything.
func (c *Catalog) Lookup(name Name) (Rule, bool) {
	r, ok := c.rules[name]
	return r, ok
}

// List returns summaries of every rule in registration order.
func (c *Catalog) List() []datatypes.RuleSummary {
	out := make([]datatypes.RuleSummary, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.rules[name].Summary())
	}
	return out
}

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}
