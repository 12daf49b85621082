// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command taskgym-agent is a scripted demonstration agent for the
// TaskGym environment.
//
// It is a rule-based policy, not a learning one: it shows how an agent
// connects to the environment, observes state, acts on the board, and
// banks rewards. A real training setup would drive the same HTTP
// surface from an RL framework.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
	episodes  int
	seed      int64
	delay     int

	rootCmd = &cobra.Command{
		Use:   "taskgym-agent",
		Short: "A demo agent for the TaskGym task-management environment",
		Long: `taskgym-agent connects to a running TaskGym environment server,
resets it, and plays scripted strategies against the rule catalog,
printing the rewards it banks along the way.`,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run one or more scripted episodes against the environment",
		RunE:  runEpisodes,
	}

	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List the rules the environment rewards",
		RunE:  listRules,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000",
		"Base URL of the environment server")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "",
		"Bearer token for the environment API (empty for local servers)")
	runCmd.Flags().IntVar(&episodes, "episodes", 1, "Number of episodes to play")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed for the agent's random choices (0 = clock)")
	runCmd.Flags().IntVar(&delay, "delay", 100, "Delay between actions in milliseconds")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(rulesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
