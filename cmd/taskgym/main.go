// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command taskgym starts the TaskGym environment HTTP server.
//
// This is the main entry point for the containerized environment
// service. It reads configuration from environment variables and
// starts the server.
//
// # Environment Variables
//
//   - TASKGYM_PORT: HTTP server port (default: 8000)
//   - TASKGYM_DATA_DIR: BadgerDB directory (default: ./data/taskgym)
//   - TASKGYM_IN_MEMORY: run without disk persistence (default: false)
//   - TASKGYM_SEED: RNG seed for reproducible boards (default: clock)
//   - TASKGYM_AUTH_TOKEN: static bearer token for /api routes (optional)
//   - TASKGYM_ENABLE_TRACING: export OTLP traces (default: false)
//   - TASKGYM_LOG_DIR: also write JSON logs to this directory (optional)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: localhost:4317)
//
// # Usage
//
//	# Build
//	go build -o taskgym ./cmd/taskgym
//
//	# Run
//	./taskgym
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/taskgym-ai/taskgym/pkg/logging"
	"github.com/taskgym-ai/taskgym/services/environment"
)

func main() {
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  os.Getenv("TASKGYM_LOG_DIR"),
		Service: "environment",
		JSON:    true,
	})
	defer func() { _ = logger.Close() }()
	slog.SetDefault(logger.Slog())

	// Build configuration from environment variables
	cfg := environment.Config{
		Port:          getEnvInt("TASKGYM_PORT", 8000),
		DataDir:       getEnvString("TASKGYM_DATA_DIR", "./data/taskgym"),
		InMemory:      getEnvBool("TASKGYM_IN_MEMORY", false),
		Seed:          int64(getEnvInt("TASKGYM_SEED", 0)),
		AuthToken:     os.Getenv("TASKGYM_AUTH_TOKEN"),
		EnableTracing: getEnvBool("TASKGYM_ENABLE_TRACING", false),
		EnableMetrics: true,
		OTelEndpoint:  getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	slog.Info("Starting environment",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"in_memory", cfg.InMemory,
	)

	svc, err := environment.New(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create environment: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Environment error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
