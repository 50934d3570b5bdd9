package zone

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// Stop brings a zone down, gracefully when it cooperates and by force when it
// does not, then terminates its console session and marks the record
// installed.
func (h *Handlers) Stop(ctx context.Context, task model.Task, _ model.TaskPayload) (*queue.Result, error) {
	zone := task.ZoneName

	if err := h.shutdownOrHalt(ctx, zone); err != nil {
		return nil, err
	}

	var cleanups *multierror.Error
	if err := h.console.Terminate(ctx, zone); err != nil {
		cleanups = multierror.Append(cleanups, fmt.Errorf("could not terminate the console session: %w", err))
	}
	if err := h.setZoneStatus(ctx, zone, model.ZoneStatusInstalled); err != nil {
		cleanups = multierror.Append(cleanups, err)
	}

	cleanup := ""
	if err := cleanups.ErrorOrNil(); err != nil {
		cleanup = err.Error()
	}

	return &queue.Result{
		Message:      fmt.Sprintf("zone %q stopped", zone),
		CleanupError: cleanup,
	}, nil
}

// shutdownOrHalt tries a graceful shutdown first and falls back to a forced
// halt, some zones ignore the shutdown request or have no working init.
func (h *Handlers) shutdownOrHalt(ctx context.Context, zone string) error {
	err := h.zones.Shutdown(ctx, zone)
	if err == nil {
		return nil
	}

	h.logger.WithValues(log.Kv{"zone": zone}).Warningf("Graceful shutdown failed, forcing halt: %s", err)
	if err := h.zones.Halt(ctx, zone); err != nil {
		return err
	}

	return nil
}
