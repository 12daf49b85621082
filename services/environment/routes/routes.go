// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"math/rand"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskgym-ai/taskgym/pkg/extensions"
	"github.com/taskgym-ai/taskgym/services/environment/handlers"
	"github.com/taskgym-ai/taskgym/services/environment/middleware"
	"github.com/taskgym-ai/taskgym/services/environment/rules"
	"github.com/taskgym-ai/taskgym/services/environment/store"
)

func SetupRoutes(router *gin.Engine, ts *store.TaskStore, v *rules.Validator,
	authProvider extensions.AuthProvider, rng *rand.Rand) {

	router.Use(middleware.Metrics())

	router.GET("/health", handlers.HealthCheck())
	router.GET("/", handlers.Root())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API group: everything the agent touches goes through auth
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(authProvider))
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", handlers.ListTasks(ts))
			tasks.POST("", handlers.CreateTask(ts, v))
			tasks.GET("/:taskId", handlers.GetTask(ts))
			tasks.PUT("/:taskId", handlers.UpdateTask(ts, v))
			tasks.DELETE("/:taskId", handlers.DeleteTask(ts, v))
		}
		// RL environment routes
		rl := api.Group("/rl")
		{
			rl.POST("/reset", handlers.ResetEnvironment(ts, v, rng))
			rl.GET("/state", handlers.GetEnvironmentState(ts, v))
			rl.POST("/validate/:taskName", handlers.ValidateRule(ts, v))
			rl.GET("/tasks", handlers.ListRules(v))
		}
	}
}
