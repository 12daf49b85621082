// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// End-to-end tests for the environment HTTP surface

package routes

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskgym-ai/taskgym/pkg/extensions"
	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
	"github.com/taskgym-ai/taskgym/services/environment/rules"
	"github.com/taskgym-ai/taskgym/services/environment/store"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := datatypes.RegisterValidations(v); err != nil {
			panic(err)
		}
	}
}

type testEnv struct {
	router *gin.Engine
	store  *store.TaskStore
}

func setupTestEnv(t *testing.T, provider extensions.AuthProvider) *testEnv {
	t.Helper()

	ts, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ts.Close() })

	if provider == nil {
		provider = &extensions.NopAuthProvider{}
	}

	router := gin.New()
	SetupRoutes(router, ts, rules.NewValidator(), provider, rand.New(rand.NewSource(1)))
	return &testEnv{router: router, store: ts}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// =============================================================================
// Task CRUD
// =============================================================================

func TestCreateTaskEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.request(t, "POST", "/api/tasks", map[string]any{
		"title":    "Ship the release",
		"priority": "urgent",
		"tags":     []string{"release"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	task := decode[datatypes.Task](t, w)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Ship the release", task.Title)
	assert.Equal(t, datatypes.PriorityUrgent, task.Priority)
	assert.Equal(t, datatypes.StatusTodo, task.Status)

	// The create counted as one agent action
	state := decode[datatypes.EnvironmentState](t, env.request(t, "GET", "/api/rl/state", nil))
	assert.Equal(t, 1, state.ActionsTaken)
	assert.Equal(t, 1, state.TotalTasks)
}

func TestCreateTaskRejectsMissingTitle(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.request(t, "POST", "/api/tasks", map[string]any{"priority": "high"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTaskRejectsInvalidPriority(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.request(t, "POST", "/api/tasks", map[string]any{
		"title":    "bad",
		"priority": "mega-urgent",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTasksWithFilters(t *testing.T) {
	env := setupTestEnv(t, nil)

	env.request(t, "POST", "/api/tasks", map[string]any{"title": "a", "status": "todo", "priority": "high"})
	env.request(t, "POST", "/api/tasks", map[string]any{"title": "b", "status": "completed", "priority": "high"})

	tasks := decode[[]datatypes.Task](t, env.request(t, "GET", "/api/tasks?status=todo", nil))
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)

	tasks = decode[[]datatypes.Task](t, env.request(t, "GET", "/api/tasks?priority=high", nil))
	assert.Len(t, tasks, 2)
}

func TestListTasksRejectsInvalidFilter(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.request(t, "GET", "/api/tasks?status=doing", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, "GET", "/api/tasks?priority=sky-high", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTaskNotFound(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.request(t, "GET", "/api/tasks/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTaskEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)

	created := decode[datatypes.Task](t, env.request(t, "POST", "/api/tasks",
		map[string]any{"title": "wip"}))

	w := env.request(t, "PUT", "/api/tasks/"+created.ID, map[string]any{
		"status":      "completed",
		"assigned_to": "Alice Chen",
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated := decode[datatypes.Task](t, w)
	assert.Equal(t, datatypes.StatusCompleted, updated.Status)
	assert.Equal(t, "Alice Chen", updated.AssignedTo)
	assert.Equal(t, "wip", updated.Title)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)

	created := decode[datatypes.Task](t, env.request(t, "POST", "/api/tasks",
		map[string]any{"title": "doomed"}))

	w := env.request(t, "DELETE", "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "Task deleted successfully", resp["message"])

	w = env.request(t, "GET", "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, "DELETE", "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// RL Surface
// =============================================================================

func TestValidateUnknownRuleIsNotAnError(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.request(t, "POST", "/api/rl/validate/walk_the_dog", nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[datatypes.ValidationResult](t, w)
	assert.False(t, result.Completed)
	assert.Equal(t, 0.0, result.Reward)
	assert.Equal(t, "Unknown task: walk_the_dog", result.Feedback)
}

func TestValidateKnownRuleEarnsReward(t *testing.T) {
	env := setupTestEnv(t, nil)

	env.request(t, "POST", "/api/tasks", map[string]any{"title": "u", "priority": "urgent"})

	w := env.request(t, "POST", "/api/rl/validate/create_urgent_task", nil)
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[datatypes.ValidationResult](t, w)
	assert.True(t, result.Completed)
	assert.Equal(t, 10.0, result.Reward)
	assert.Equal(t, "✅ Found 1 urgent task(s)", result.Feedback)

	state := decode[datatypes.EnvironmentState](t, env.request(t, "GET", "/api/rl/state", nil))
	assert.Equal(t, 10.0, state.CurrentReward)
}

func TestListRulesEndpoint(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.request(t, "GET", "/api/rl/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The response is a bare JSON array, not an object wrapper
	rules := decode[[]datatypes.RuleSummary](t, w)
	require.Len(t, rules, 24)
	assert.Equal(t, "create_urgent_task", rules[0].Name)
}

func TestResetEndpointReseedsAndAdvancesEpisode(t *testing.T) {
	env := setupTestEnv(t, nil)

	env.request(t, "POST", "/api/tasks", map[string]any{"title": "extra"})
	env.request(t, "POST", "/api/tasks", map[string]any{"title": "u", "priority": "urgent"})
	env.request(t, "POST", "/api/rl/validate/create_urgent_task", nil)

	w := env.request(t, "POST", "/api/rl/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]string](t, w)
	assert.Equal(t, "Environment reset successfully", resp["message"])

	state := decode[datatypes.EnvironmentState](t, env.request(t, "GET", "/api/rl/state", nil))
	assert.Equal(t, 15, state.TotalTasks, "reset reseeds the template board")
	assert.Equal(t, 2, state.EpisodeNumber)
	assert.Equal(t, 0, state.ActionsTaken)
	assert.Equal(t, 0.0, state.CurrentReward)
}

func TestConcurrentResetsKeepBoardConsistent(t *testing.T) {
	env := setupTestEnv(t, nil)

	// Wipe-and-reseed must be serialized: interleaved resets would each
	// observe an empty board and double-seed it.
	const resets = 8
	var wg sync.WaitGroup
	codes := make([]int, resets)
	for i := 0; i < resets; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/api/rl/reset", nil)
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			codes[n] = w.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	state := decode[datatypes.EnvironmentState](t, env.request(t, "GET", "/api/rl/state", nil))
	assert.Equal(t, 15, state.TotalTasks, "every reset leaves exactly one seeded board")
	assert.Equal(t, 1+resets, state.EpisodeNumber)
}

func TestStateOnEmptyBoard(t *testing.T) {
	env := setupTestEnv(t, nil)

	state := decode[datatypes.EnvironmentState](t, env.request(t, "GET", "/api/rl/state", nil))
	assert.Equal(t, 0, state.TotalTasks)
	assert.Equal(t, 0.0, state.CompletionRate)
	assert.Empty(t, state.TasksByStatus)
	assert.Equal(t, 1, state.EpisodeNumber)
}

// =============================================================================
// Auth
// =============================================================================

func TestAPIRequiresTokenWithStaticProvider(t *testing.T) {
	env := setupTestEnv(t, &extensions.StaticTokenAuthProvider{Token: "sekrit"})

	// Missing token
	w := env.request(t, "GET", "/api/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong token
	req, _ := http.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token
	req, _ = http.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open
	w = env.request(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
