package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/zonectl/internal/log"
)

// TaskDispatcher claims and runs one task.
type TaskDispatcher interface {
	DispatchOnce(ctx context.Context) (claimed bool, err error)
}

const (
	defaultPollInterval = 2 * time.Second
	defaultWorkers      = 1
)

// WorkerConfig is the configuration of the worker.
type WorkerConfig struct {
	Dispatcher TaskDispatcher
	// Workers is how many claim loops run concurrently. Claims are exclusive,
	// extra loops only add parallelism across different tasks.
	Workers int
	// PollInterval is how long an idle loop waits before asking again.
	PollInterval time.Duration
	Logger       log.Logger
}

func (c *WorkerConfig) defaults() error {
	if c.Dispatcher == nil {
		return fmt.Errorf("dispatcher is required")
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "queue.Worker"})

	return nil
}

// Worker drains the queue: each loop dispatches back to back while claims
// succeed and polls when the queue is empty. There are no retries and no
// timeouts, a hung command hangs its loop until the command returns.
type Worker struct {
	dispatcher   TaskDispatcher
	workers      int
	pollInterval time.Duration
	logger       log.Logger
}

// NewWorker creates a new worker.
func NewWorker(config WorkerConfig) (*Worker, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Worker{
		dispatcher:   config.Dispatcher,
		workers:      config.Workers,
		pollInterval: config.PollInterval,
		logger:       config.Logger,
	}, nil
}

// Run blocks draining the queue until the context is done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Infof("Worker started with %d claim loops", w.workers)
	defer w.logger.Infof("Worker stopped")

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, i)
		}()
	}
	wg.Wait()

	return nil
}

func (w *Worker) loop(ctx context.Context, id int) {
	logger := w.logger.WithValues(log.Kv{"loop": id})

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		claimed, err := w.dispatcher.DispatchOnce(ctx)
		if err != nil {
			logger.Errorf("Dispatch failed: %s", err)
		}
		if claimed {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
