package queue

import (
	"context"
	"fmt"

	"github.com/slok/zonectl/internal/model"
)

// Result is the successful outcome of a handled task.
type Result struct {
	// Message is the human readable summary stored on the task.
	Message string
	// CleanupError notes secondary store cleanup that failed after the system
	// change itself succeeded. It does not fail the task, stale rows self-heal
	// on the next discovery pass.
	CleanupError string
}

// Handler executes one operation kind. The payload arrives already decoded
// and validated, a handler never parses raw metadata.
type Handler interface {
	Handle(ctx context.Context, task model.Task, payload model.TaskPayload) (*Result, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, task model.Task, payload model.TaskPayload) (*Result, error)

// Handle satisfies Handler.
func (f HandlerFunc) Handle(ctx context.Context, task model.Task, payload model.TaskPayload) (*Result, error) {
	return f(ctx, task, payload)
}

// Registry maps operations to their handlers. Registration happens once at
// wiring time, lookups are read-only afterwards.
type Registry struct {
	handlers map[model.Operation]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[model.Operation]Handler{}}
}

// Register binds a handler to an operation.
func (r *Registry) Register(op model.Operation, h Handler) error {
	if !op.Valid() {
		return fmt.Errorf("unknown operation %q: %w", op, model.ErrNotValid)
	}
	if h == nil {
		return fmt.Errorf("handler is required: %w", model.ErrNotValid)
	}
	if _, ok := r.handlers[op]; ok {
		return fmt.Errorf("operation %q already registered: %w", op, model.ErrAlreadyExists)
	}

	r.handlers[op] = h
	return nil
}

// Handler returns the handler of an operation, if registered.
func (r *Registry) Handler(op model.Operation) (Handler, bool) {
	h, ok := r.handlers[op]
	return h, ok
}
