package zone

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// Create provisions a new zone from a full configuration: configure always,
// install and boot when the payload asks for them. The stored record carries
// the payload's provisioning bookkeeping, which live exports never produce.
func (h *Handlers) Create(ctx context.Context, task model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.ZoneCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	zone := task.ZoneName
	logger := h.logger.WithValues(log.Kv{"zone": zone})

	if err := h.zones.Configure(ctx, zone, p.Configuration); err != nil {
		return nil, err
	}
	status := model.ZoneStatusConfigured

	if p.Install {
		logger.Infof("Installing zone")
		if err := h.zones.Install(ctx, zone); err != nil {
			return nil, err
		}
		status = model.ZoneStatusInstalled
	}

	if p.Boot {
		if err := h.zones.Boot(ctx, zone); err != nil {
			return nil, err
		}
		if err := h.zones.FixZonepathPermissions(ctx, p.Configuration.Zonepath); err != nil {
			return nil, err
		}
		status = model.ZoneStatusRunning
	}

	now := time.Now().UTC()
	record := model.Zone{
		Name:          zone,
		Host:          h.host,
		Status:        status,
		Brand:         p.Configuration.Brand,
		Configuration: p.Configuration,
		LastSeen:      now,
	}

	cleanup := ""
	err := h.storage.CreateZone(ctx, record)
	if errors.Is(err, model.ErrAlreadyExists) {
		// A discovery pass may have beaten us to the record.
		err = h.storage.UpdateZone(ctx, record)
	}
	if err != nil {
		cleanup = fmt.Sprintf("could not persist the zone record: %s", err)
	}

	return &queue.Result{
		Message:      fmt.Sprintf("zone %q created (%s)", zone, status),
		CleanupError: cleanup,
	}, nil
}
