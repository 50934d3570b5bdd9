package zone

import (
	"context"
	"fmt"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// Start boots a zone and marks its record running.
func (h *Handlers) Start(ctx context.Context, task model.Task, _ model.TaskPayload) (*queue.Result, error) {
	cleanup, err := h.startZone(ctx, task.ZoneName)
	if err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("zone %q started", task.ZoneName),
		CleanupError: cleanup,
	}, nil
}

// startZone boots the zone, resets the zonepath permissions that the
// privileged boot clobbers and refreshes the store. Store failures come back
// as the cleanup note, the zone itself is up.
func (h *Handlers) startZone(ctx context.Context, zone string) (string, error) {
	if err := h.zones.Boot(ctx, zone); err != nil {
		return "", err
	}

	info, err := h.liveZone(ctx, zone)
	if err != nil {
		return "", err
	}
	if err := h.zones.FixZonepathPermissions(ctx, info.Zonepath); err != nil {
		return "", err
	}

	cleanup := ""
	if err := h.setZoneStatus(ctx, zone, model.ZoneStatusRunning); err != nil {
		cleanup = err.Error()
	}

	return cleanup, nil
}
