package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/storage"
)

// DispatcherConfig is the configuration of the dispatcher.
type DispatcherConfig struct {
	// Host is the identity tasks are claimed for.
	Host     string
	Storage  storage.TaskRepository
	Registry *Registry
	Logger   log.Logger
}

func (c *DispatcherConfig) defaults() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Storage == nil {
		return fmt.Errorf("storage is required")
	}
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "queue.Dispatcher"})

	return nil
}

// Dispatcher claims tasks one at a time and runs their handlers. The claim is
// the only mutual exclusion in the system, whoever wins the pending to running
// transition owns the task to its terminal status.
type Dispatcher struct {
	host     string
	storage  storage.TaskRepository
	registry *Registry
	logger   log.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(config DispatcherConfig) (*Dispatcher, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Dispatcher{
		host:     config.Host,
		storage:  config.Storage,
		registry: config.Registry,
		logger:   config.Logger,
	}, nil
}

// DispatchOnce claims the next pending task and drives it to a terminal
// status. The returned bool tells whether a task was claimed at all, the
// returned error covers store level problems only: handler failures, bad
// metadata and panics all land on the task as failed and do not bubble up,
// no single task may stop the queue from processing the others.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (bool, error) {
	task, err := d.storage.ClaimNextTask(ctx, d.host)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("could not claim a task: %w", err)
	}

	logger := d.logger.WithValues(log.Kv{"task-id": task.ID, "operation": task.Operation})
	logger.Debugf("Task claimed")

	payload, err := model.DecodeTaskPayload(task.Operation, task.Metadata)
	if err != nil {
		logger.Warningf("Task metadata rejected: %s", err)
		return true, d.fail(ctx, task.ID, err.Error())
	}

	handler, ok := d.registry.Handler(task.Operation)
	if !ok {
		logger.Warningf("No handler registered")
		return true, d.fail(ctx, task.ID, fmt.Sprintf("no handler registered for operation %q", task.Operation))
	}

	result, err := d.run(ctx, handler, *task, payload)
	if err != nil {
		logger.Warningf("Task failed: %s", err)
		return true, d.fail(ctx, task.ID, err.Error())
	}

	if err := d.storage.MarkTaskCompleted(ctx, task.ID, result.Message, result.CleanupError); err != nil {
		return true, fmt.Errorf("could not mark task %q completed: %w", task.ID, err)
	}
	if result.CleanupError != "" {
		logger.Warningf("Task completed with cleanup problems: %s", result.CleanupError)
	} else {
		logger.Infof("Task completed")
	}

	return true, nil
}

// run isolates one handler invocation, a panicking handler fails its task
// instead of taking the worker down.
func (d *Dispatcher) run(ctx context.Context, handler Handler, task model.Task, payload model.TaskPayload) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	result, err = handler.Handle(ctx, task, payload)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &Result{}
	}
	return result, nil
}

func (d *Dispatcher) fail(ctx context.Context, id, reason string) error {
	if err := d.storage.MarkTaskFailed(ctx, id, reason); err != nil {
		return fmt.Errorf("could not mark task %q failed: %w", id, err)
	}
	return nil
}
