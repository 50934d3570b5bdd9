// Package queue implements the priority task queue of the orchestrator:
// enqueuing with upfront validation, exclusive claim based dispatch and the
// worker loops that drain it.
package queue

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/storage"
)

// zoneScopedOperations are the operations that target one specific zone and
// therefore require a zone name at enqueue time.
var zoneScopedOperations = map[model.Operation]struct{}{
	model.OperationZoneCreate:  {},
	model.OperationZoneStart:   {},
	model.OperationZoneStop:    {},
	model.OperationZoneRestart: {},
	model.OperationZoneDelete:  {},
}

// ServiceConfig is the configuration of the queue service.
type ServiceConfig struct {
	// Host is the identity every task is keyed on.
	Host    string
	Storage storage.TaskRepository
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Storage == nil {
		return fmt.Errorf("storage is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "queue.Service"})

	return nil
}

// Service is the enqueue and inspection surface of the task queue. Everything
// a caller can observe about a task flows through here and the store, there
// is no separate event channel.
type Service struct {
	host    string
	storage storage.TaskRepository
	logger  log.Logger
}

// NewService creates a new queue service.
func NewService(config ServiceConfig) (*Service, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Service{
		host:    config.Host,
		storage: config.Storage,
		logger:  config.Logger,
	}, nil
}

// EnqueueRequest is one task submission.
type EnqueueRequest struct {
	ZoneName  string
	Operation model.Operation
	// Priority defaults to medium when empty.
	Priority  model.TaskPriority
	CreatedBy string
	Metadata  json.RawMessage
}

// Enqueue validates and persists a new task. The metadata is decoded against
// the operation's payload contract before anything is persisted, a malformed
// task never reaches a worker. Staged operations enqueue as prepared and stay
// invisible to dispatch until Ready moves them to pending.
func (s *Service) Enqueue(ctx context.Context, req EnqueueRequest) (*model.Task, error) {
	if !req.Operation.Valid() {
		return nil, fmt.Errorf("unknown operation %q: %w", req.Operation, model.ErrNotValid)
	}

	if req.Priority == "" {
		req.Priority = model.TaskPriorityMedium
	}
	if !req.Priority.Valid() {
		return nil, fmt.Errorf("unknown priority %q: %w", req.Priority, model.ErrNotValid)
	}

	if _, ok := zoneScopedOperations[req.Operation]; ok {
		if err := model.ValidateZoneName(req.ZoneName); err != nil {
			return nil, err
		}
	}

	if _, err := model.DecodeTaskPayload(req.Operation, req.Metadata); err != nil {
		return nil, err
	}

	status := model.TaskStatusPending
	if req.Operation.Staged() {
		status = model.TaskStatusPrepared
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Host:      s.host,
		ZoneName:  req.ZoneName,
		Operation: req.Operation,
		Priority:  req.Priority,
		Status:    status,
		CreatedBy: req.CreatedBy,
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not persist task: %w", err)
	}

	s.logger.WithValues(log.Kv{"task-id": task.ID, "operation": task.Operation}).
		Infof("Task enqueued as %s", task.Status)

	return &task, nil
}

// Status returns a task by id.
func (s *Service) Status(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	task, err := s.storage.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	return task, nil
}

// Cancel cancels a pending task. Cancellation is pre-dispatch only, a task
// already claimed by a worker runs to its end.
func (s *Service) Cancel(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	if err := s.storage.MarkTaskCancelled(ctx, id); err != nil {
		return nil, fmt.Errorf("could not cancel task: %w", err)
	}

	task, err := s.storage.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	return task, nil
}

// Ready moves a prepared task to pending, making it dispatch-eligible.
func (s *Service) Ready(ctx context.Context, id string) (*model.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	if err := s.storage.MarkTaskReady(ctx, id); err != nil {
		return nil, fmt.Errorf("could not mark task ready: %w", err)
	}

	task, err := s.storage.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	return task, nil
}

// List returns the host's tasks matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter storage.TaskListFilter) ([]model.Task, error) {
	tasks, err := s.storage.ListTasks(ctx, s.host, filter)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	return tasks, nil
}
