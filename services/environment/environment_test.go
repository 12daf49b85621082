// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// Tests for environment service construction and wiring

package environment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	svc, err := New(Config{
		InMemory:      true,
		Seed:          42,
		EnableMetrics: false,
		GinMode:       "test",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestNewAppliesDefaults(t *testing.T) {
	cfg := applyConfigDefaults(Config{})

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "./data/taskgym", cfg.DataDir)
	assert.Equal(t, "localhost:4317", cfg.OTelEndpoint)
}

func TestServiceServesHealth(t *testing.T) {
	svc := newTestService(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	svc.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServiceSeedsBoardOnStartup(t *testing.T) {
	svc := newTestService(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/rl/state", nil)
	svc.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var state datatypes.EnvironmentState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 15, state.TotalTasks)
	assert.Equal(t, 1, state.EpisodeNumber)
}

func TestServiceWithAuthTokenGatesAPI(t *testing.T) {
	svc, err := New(Config{
		InMemory:      true,
		Seed:          42,
		EnableMetrics: false,
		GinMode:       "test",
		AuthToken:     "train-token",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	svc.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer train-token")
	svc.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCloseIsIdempotent(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
}
