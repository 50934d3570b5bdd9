package zone

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// Restart stops the zone, waits a settle interval and starts it again. A
// failing stop aborts the restart, booting on top of a half stopped zone is
// worse than leaving it alone.
func (h *Handlers) Restart(ctx context.Context, task model.Task, _ model.TaskPayload) (*queue.Result, error) {
	zone := task.ZoneName

	if err := h.shutdownOrHalt(ctx, zone); err != nil {
		return nil, fmt.Errorf("could not stop zone %q for restart: %w", zone, err)
	}

	var cleanups *multierror.Error
	if err := h.console.Terminate(ctx, zone); err != nil {
		cleanups = multierror.Append(cleanups, fmt.Errorf("could not terminate the console session: %w", err))
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(h.restartSettle):
	}

	startCleanup, err := h.startZone(ctx, zone)
	if err != nil {
		return nil, err
	}
	if startCleanup != "" {
		cleanups = multierror.Append(cleanups, fmt.Errorf("%s", startCleanup))
	}

	cleanup := ""
	if err := cleanups.ErrorOrNil(); err != nil {
		cleanup = err.Error()
	}

	return &queue.Result{
		Message:      fmt.Sprintf("zone %q restarted", zone),
		CleanupError: cleanup,
	}, nil
}
