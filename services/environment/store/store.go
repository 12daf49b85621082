// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store persists tasks in an embedded BadgerDB instance.
//
// BadgerDB gives the environment durable local state with low-latency
// access and no external database dependency, which keeps single-binary
// deployments simple. Tasks are stored as JSON values under "task:<id>"
// keys.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
)

// ErrTaskNotFound is returned when a task ID does not exist.
var ErrTaskNotFound = errors.New("task not found")

const keyPrefix = "task:"

// Config holds configuration for the task store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing and ephemeral training runs.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output.
	// If nil, BadgerDB logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults: persistent storage with
// synchronous writes.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests: in-memory mode
// with synchronous writes disabled.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// TaskStore is a BadgerDB-backed task repository.
//
// Thread Safety: all methods are safe for concurrent use; BadgerDB
// transactions provide the isolation.
type TaskStore struct {
	db  *badger.DB
	now func() time.Time
}

// Open creates and opens a task store with the given configuration.
//
// # Description
//
// Opens a BadgerDB database at the configured path, or in memory if
// InMemory is true. Creates the directory if it doesn't exist.
//
// # Outputs
//
//	*TaskStore - The opened store. Caller must call Close() when done.
//	error - Non-nil if the path is invalid or the database cannot open.
func Open(cfg Config) (*TaskStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &TaskStore{db: db, now: time.Now}, nil
}

// Close releases the underlying database.
func (s *TaskStore) Close() error {
	return s.db.Close()
}

func taskKey(id string) []byte {
	return []byte(keyPrefix + id)
}

// Create inserts a new task from the request, assigning it a UUID and
// UTC timestamps. Status defaults to todo and priority to medium when
// the request omits them.
func (s *TaskStore) Create(req datatypes.TaskCreateRequest) (datatypes.Task, error) {
	now := s.now().UTC()
	task := datatypes.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      datatypes.StatusTodo,
		Priority:    datatypes.PriorityMedium,
		Tags:        req.Tags,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if err := s.put(task); err != nil {
		return datatypes.Task{}, err
	}
	return task, nil
}

// Get fetches one task by ID. Returns ErrTaskNotFound if absent.
func (s *TaskStore) Get(id string) (datatypes.Task, error) {
	var task datatypes.Task
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("get task %s: %w", id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		})
	})
	if err != nil {
		return datatypes.Task{}, err
	}
	return task, nil
}

// List returns all tasks, optionally filtered by status and priority.
// Empty filter values match everything. Results are sorted by creation
// time, then by ID for a stable order among equal timestamps.
func (s *TaskStore) List(status datatypes.TaskStatus, priority datatypes.TaskPriority) ([]datatypes.Task, error) {
	tasks := []datatypes.Task{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var task datatypes.Task
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &task)
			})
			if err != nil {
				return fmt.Errorf("decode task %s: %w", it.Item().Key(), err)
			}
			if status != "" && task.Status != status {
				continue
			}
			if priority != "" && task.Priority != priority {
				continue
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// Update applies the non-nil fields of the request to an existing task
// and bumps UpdatedAt. Returns ErrTaskNotFound if the ID is absent.
func (s *TaskStore) Update(id string, req datatypes.TaskUpdateRequest) (datatypes.Task, error) {
	task, err := s.Get(id)
	if err != nil {
		return datatypes.Task{}, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Tags != nil {
		task.Tags = *req.Tags
	}
	if req.AssignedTo != nil {
		task.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.put(task); err != nil {
		return datatypes.Task{}, err
	}
	return task, nil
}

// Delete removes one task. Returns ErrTaskNotFound if the ID is absent.
func (s *TaskStore) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := taskKey(id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTaskNotFound
		} else if err != nil {
			return fmt.Errorf("get task %s: %w", id, err)
		}
		return txn.Delete(key)
	})
}

// DeleteAll removes every task. Used by environment reset.
func (s *TaskStore) DeleteAll() error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete task %s: %w", key, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored tasks.
func (s *TaskStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *TaskStore) put(task datatypes.Task) error {
	val, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", task.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(taskKey(task.ID), val)
	})
}
