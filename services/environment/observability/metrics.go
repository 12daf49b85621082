// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the environment
// service.
//
// # Description
//
// Metrics cover the agent-facing surface of the environment:
//   - Action counters (by action type)
//   - Validation counters (by rule and outcome)
//   - Episode resets
//   - The current episode's cumulative reward
//   - HTTP request latency (by method, route, status)
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for training-run dashboards.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "taskgym"

// Subsystem for environment metrics
const environmentSubsystem = "environment"

// EnvironmentMetrics holds all Prometheus metrics for the environment
// service. Initialize once at startup via InitMetrics().
type EnvironmentMetrics struct {
	// ActionsTotal counts agent actions by type.
	// Labels: action (create_task, update_task, delete_task)
	ActionsTotal *prometheus.CounterVec

	// ValidationsTotal counts rule validations by rule name and outcome.
	// Labels: rule, outcome (success, failure, unknown)
	ValidationsTotal *prometheus.CounterVec

	// EpisodeResetsTotal counts environment resets.
	EpisodeResetsTotal prometheus.Counter

	// CumulativeReward tracks the current episode's reward total.
	CumulativeReward prometheus.Gauge

	// RequestDuration tracks HTTP request latency.
	// Labels: method, path, status
	RequestDuration *prometheus.HistogramVec
}

// DefaultMetrics is the singleton instance of EnvironmentMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *EnvironmentMetrics

var initOnce sync.Once

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics against the default
// registry. Safe to call more than once; registration happens exactly
// once and later calls return the existing instance. This matters for
// tests that construct the service repeatedly in one process.
func InitMetrics() *EnvironmentMetrics {
	initOnce.Do(func() {
		DefaultMetrics = &EnvironmentMetrics{
			ActionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: environmentSubsystem,
					Name:      "actions_total",
					Help:      "Total agent actions by type",
				},
				[]string{"action"},
			),

			ValidationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: environmentSubsystem,
					Name:      "validations_total",
					Help:      "Total rule validations by rule and outcome",
				},
				[]string{"rule", "outcome"},
			),

			EpisodeResetsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: environmentSubsystem,
					Name:      "episode_resets_total",
					Help:      "Total environment resets",
				},
			),

			CumulativeReward: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: environmentSubsystem,
					Name:      "cumulative_reward",
					Help:      "Cumulative reward of the current episode",
				},
			),

			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: environmentSubsystem,
					Name:      "request_duration_seconds",
					Help:      "HTTP request latency",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"method", "path", "status"},
			),
		}
	})
	return DefaultMetrics
}

// ===========================================================================
// Helper Functions
// ===========================================================================
//
// All helpers are nil-safe: they no-op when InitMetrics has not been
// called, so handler code never needs to guard metric calls.

// RecordAction records one agent action.
func RecordAction(actionType string) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.ActionsTotal.WithLabelValues(actionType).Inc()
}

// RecordValidation records a rule validation and its outcome. Unknown
// rule names are labeled "unknown" so noisy agents are visible on the
// dashboard.
func RecordValidation(rule string, known, completed bool) {
	if DefaultMetrics == nil {
		return
	}
	outcome := "failure"
	switch {
	case !known:
		outcome = "unknown"
	case completed:
		outcome = "success"
	}
	DefaultMetrics.ValidationsTotal.WithLabelValues(rule, outcome).Inc()
}

// RecordEpisodeReset records an environment reset.
func RecordEpisodeReset() {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.EpisodeResetsTotal.Inc()
}

// SetCumulativeReward publishes the current episode's reward total.
func SetCumulativeReward(reward float64) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.CumulativeReward.Set(reward)
}

// ObserveRequestDuration records one HTTP request's latency. Path
// should be the route template, not the raw URL, to keep cardinality
// bounded.
func ObserveRequestDuration(method, path, status string, seconds float64) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.RequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}
