// Package bootenv implements the task handlers of the boot environment
// operations. Boot environments are host level, the store keeps no records
// of them, a `beadm list` is always fresher than anything we could cache.
package bootenv

import (
	"context"
	"fmt"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// BEManager drives the beadm commands.
type BEManager interface {
	Create(ctx context.Context, p model.BootEnvCreatePayload) error
	Destroy(ctx context.Context, name string, destroySnapshots bool) error
	Activate(ctx context.Context, name string, temporary bool) error
	Mount(ctx context.Context, name, mountpoint, sharedMode string) error
	Unmount(ctx context.Context, name string, force bool) error
}

// HandlersConfig is the configuration of the boot environment handlers.
type HandlersConfig struct {
	BootEnvs BEManager
	Logger   log.Logger
}

func (c *HandlersConfig) defaults() error {
	if c.BootEnvs == nil {
		return fmt.Errorf("boot environment manager is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "handler.BootEnv"})

	return nil
}

// Handlers implements the boot environment task operations.
type Handlers struct {
	bootenvs BEManager
	logger   log.Logger
}

// NewHandlers returns the boot environment handlers.
func NewHandlers(config HandlersConfig) (*Handlers, error) {
	err := config.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Handlers{
		bootenvs: config.BootEnvs,
		logger:   config.Logger,
	}, nil
}

// Register binds every boot environment operation on the registry.
func (h *Handlers) Register(registry *queue.Registry) error {
	for op, fn := range map[model.Operation]queue.HandlerFunc{
		model.OperationBootEnvCreate:   h.Create,
		model.OperationBootEnvDelete:   h.Delete,
		model.OperationBootEnvActivate: h.Activate,
		model.OperationBootEnvMount:    h.Mount,
		model.OperationBootEnvUnmount:  h.Unmount,
	} {
		if err := registry.Register(op, fn); err != nil {
			return err
		}
	}
	return nil
}

// Create creates a boot environment, optionally cloned from a source
// environment and activated for the next boot.
func (h *Handlers) Create(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.BootEnvCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.bootenvs.Create(ctx, p); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("boot environment %q created", p.Name)
	if p.Activate {
		message = fmt.Sprintf("%s and activated", message)
	}

	return &queue.Result{Message: message}, nil
}

// Delete destroys a boot environment, optionally with its snapshots.
func (h *Handlers) Delete(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.BootEnvDeletePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.bootenvs.Destroy(ctx, p.Name, p.DestroySnapshots); err != nil {
		return nil, err
	}

	return &queue.Result{Message: fmt.Sprintf("boot environment %q destroyed", p.Name)}, nil
}

// Activate marks a boot environment as the one the host boots into,
// permanently or only for the next boot.
func (h *Handlers) Activate(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.BootEnvActivatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.bootenvs.Activate(ctx, p.Name, p.Temporary); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("boot environment %q activated", p.Name)
	if p.Temporary {
		message = fmt.Sprintf("%s for the next boot", message)
	}

	return &queue.Result{Message: message}, nil
}

// Mount mounts an inactive boot environment for inspection or repair.
func (h *Handlers) Mount(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.BootEnvMountPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.bootenvs.Mount(ctx, p.Name, p.Mountpoint, p.SharedMode); err != nil {
		return nil, err
	}

	return &queue.Result{Message: fmt.Sprintf("boot environment %q mounted on %q", p.Name, p.Mountpoint)}, nil
}

// Unmount unmounts a boot environment.
func (h *Handlers) Unmount(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.BootEnvUnmountPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.bootenvs.Unmount(ctx, p.Name, p.Force); err != nil {
		return nil, err
	}

	return &queue.Result{Message: fmt.Sprintf("boot environment %q unmounted", p.Name)}, nil
}
