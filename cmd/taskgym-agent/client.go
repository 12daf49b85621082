// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// envClient is a thin HTTP client over the environment API.
type envClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newEnvClient(baseURL, token string) *envClient {
	return &envClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *envClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *envClient) health() error {
	return c.do(http.MethodGet, "/health", nil, nil)
}

func (c *envClient) reset() error {
	return c.do(http.MethodPost, "/api/rl/reset", nil, nil)
}

func (c *envClient) state() (datatypes.EnvironmentState, error) {
	var state datatypes.EnvironmentState
	err := c.do(http.MethodGet, "/api/rl/state", nil, &state)
	return state, err
}

func (c *envClient) listTasks(status string) ([]datatypes.Task, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var tasks []datatypes.Task
	err := c.do(http.MethodGet, path, nil, &tasks)
	return tasks, err
}

func (c *envClient) createTask(req datatypes.TaskCreateRequest) (datatypes.Task, error) {
	var task datatypes.Task
	err := c.do(http.MethodPost, "/api/tasks", req, &task)
	return task, err
}

func (c *envClient) updateTask(id string, req datatypes.TaskUpdateRequest) (datatypes.Task, error) {
	var task datatypes.Task
	err := c.do(http.MethodPut, "/api/tasks/"+id, req, &task)
	return task, err
}

func (c *envClient) validate(rule string) (datatypes.ValidationResult, error) {
	var result datatypes.ValidationResult
	err := c.do(http.MethodPost, "/api/rl/validate/"+url.PathEscape(rule), nil, &result)
	return result, err
}

func (c *envClient) rules() ([]datatypes.RuleSummary, error) {
	var rules []datatypes.RuleSummary
	err := c.do(http.MethodGet, "/api/rl/tasks", nil, &rules)
	return rules, err
}
