package zone

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/slok/zonectl/internal/conventions"
	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/reclaim"
)

// Delete removes a zone and optionally its backing datasets and network
// resources. The dataset analysis runs before the zone is torn down, once the
// teardown starts there is no live configuration left to analyze. Dataset
// destroy failures fail the whole task even though the zone itself is gone,
// leftover storage needs an operator, a stale record does not.
func (h *Handlers) Delete(ctx context.Context, task model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.ZoneDeletePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	zone := task.ZoneName
	logger := h.logger.WithValues(log.Kv{"zone": zone})

	var plan *reclaim.Plan
	if p.RemoveDatasets {
		config, err := h.zoneConfigForDelete(ctx, zone)
		if err != nil {
			return nil, err
		}
		plan, err = h.analyzer.Plan(ctx, zone, *config)
		if err != nil {
			return nil, err
		}
	}

	state, err := h.zones.State(ctx, zone)
	switch {
	case errors.Is(err, model.ErrNotFound):
		logger.Infof("Zone has no live definition, cleaning up records only")
	case err != nil:
		return nil, err
	default:
		if err := h.teardown(ctx, zone, state); err != nil {
			return nil, err
		}
	}

	message := fmt.Sprintf("zone %q deleted", zone)

	if plan != nil {
		result, err := h.analyzer.Destroy(ctx, plan)
		if err != nil {
			return nil, fmt.Errorf("zone %q removed but dataset cleanup failed: %w", zone, err)
		}
		message = fmt.Sprintf("%s, %d datasets destroyed, %d kept for other zones", message, len(result.Destroyed), len(result.Skipped))
	}

	var cleanups *multierror.Error

	if err := h.cleanupInterfaces(ctx, zone, p.RemoveNetwork); err != nil {
		cleanups = multierror.Append(cleanups, err)
	}

	if err := h.storage.DeleteZone(ctx, h.host, zone); err != nil && !errors.Is(err, model.ErrNotFound) {
		cleanups = multierror.Append(cleanups, fmt.Errorf("could not delete the zone record: %w", err))
	}

	prefix := conventions.ZoneLinkPrefix(zone)
	if err := h.storage.DeleteUsageByLinkPrefix(ctx, h.host, prefix); err != nil {
		cleanups = multierror.Append(cleanups, fmt.Errorf("could not sweep the usage samples: %w", err))
	}
	if err := h.storage.DeleteIPAddressesByLinkPrefix(ctx, h.host, prefix); err != nil {
		cleanups = multierror.Append(cleanups, fmt.Errorf("could not sweep the address samples: %w", err))
	}

	cancelled, err := h.storage.CancelPendingTasksByZone(ctx, h.host, zone)
	if err != nil {
		cleanups = multierror.Append(cleanups, fmt.Errorf("could not cancel the pending tasks: %w", err))
	} else if cancelled > 0 {
		message = fmt.Sprintf("%s, %d pending tasks cancelled", message, cancelled)
	}

	cleanup := ""
	if err := cleanups.ErrorOrNil(); err != nil {
		cleanup = err.Error()
	}

	return &queue.Result{Message: message, CleanupError: cleanup}, nil
}

// teardown removes the live zone: console, shutdown when running, uninstall,
// unconfigure. Any failure aborts before the storage cleanup starts.
func (h *Handlers) teardown(ctx context.Context, zone string, state model.ZoneStatus) error {
	if err := h.console.Terminate(ctx, zone); err != nil {
		return fmt.Errorf("could not terminate the console session: %w", err)
	}

	if state == model.ZoneStatusRunning || state == model.ZoneStatusShuttingDown {
		if err := h.shutdownOrHalt(ctx, zone); err != nil {
			return err
		}
	}

	if state != model.ZoneStatusConfigured {
		if err := h.zones.Uninstall(ctx, zone); err != nil {
			return err
		}
	}

	if err := h.zones.Unconfigure(ctx, zone); err != nil {
		return err
	}

	return nil
}

// zoneConfigForDelete loads the configuration the dataset analysis runs on.
// A missing or empty record self-heals from the live system first: acting on
// a configuration we never stored is fine, acting on no configuration at all
// would silently skip every dataset.
func (h *Handlers) zoneConfigForDelete(ctx context.Context, zone string) (*model.ZoneConfiguration, error) {
	record, err := h.storage.GetZone(ctx, h.host, zone)
	switch {
	case errors.Is(err, model.ErrNotFound):
		record = nil
	case err != nil:
		return nil, fmt.Errorf("could not load the zone record: %w", err)
	case !record.Configuration.Empty():
		return &record.Configuration, nil
	}

	h.logger.WithValues(log.Kv{"zone": zone}).Infof("Zone record missing or empty, recovering the configuration from the live system")
	config, err := h.zones.Export(ctx, zone)
	if err != nil {
		return nil, fmt.Errorf("could not recover the zone configuration from the live system: %w", err)
	}

	now := time.Now().UTC()
	if record == nil {
		fresh := model.Zone{
			Name:           zone,
			Host:           h.host,
			Configuration:  *config,
			AutoDiscovered: true,
			LastSeen:       now,
		}
		if state, err := h.zones.State(ctx, zone); err == nil {
			fresh.Status = state
		}
		err = h.storage.CreateZone(ctx, fresh)
	} else {
		record.Configuration = *config
		record.LastSeen = now
		err = h.storage.UpdateZone(ctx, *record)
	}
	if err != nil {
		// The recovered configuration is in hand, a failed persist only costs
		// the audit trail of a record that is about to be deleted anyway.
		h.logger.WithValues(log.Kv{"zone": zone}).Warningf("Could not persist the recovered configuration: %s", err)
	}

	return config, nil
}

// cleanupInterfaces handles the interfaces owned by the zone. With network
// removal VNICs are deleted live and from the store, everything else only
// loses its association. Without it every interface just loses its
// association, shared fabric outlives its zones.
func (h *Handlers) cleanupInterfaces(ctx context.Context, zone string, remove bool) error {
	interfaces, err := h.storage.ListInterfacesByZone(ctx, h.host, zone)
	if err != nil {
		return fmt.Errorf("could not list the zone interfaces: %w", err)
	}

	var group multierror.Group
	for _, iface := range interfaces {
		iface := iface
		group.Go(func() error {
			if !remove {
				if err := h.storage.AssignInterfaceZone(ctx, h.host, iface.Link, iface.Class, ""); err != nil {
					return fmt.Errorf("could not disassociate interface %q: %w", iface.Link, err)
				}
				return nil
			}

			if err := h.storage.DeleteIPAddressesByLink(ctx, h.host, iface.Link); err != nil {
				return fmt.Errorf("could not release the addresses of %q: %w", iface.Link, err)
			}

			if !iface.Class.ZoneDeletable() {
				if err := h.storage.AssignInterfaceZone(ctx, h.host, iface.Link, iface.Class, ""); err != nil {
					return fmt.Errorf("could not disassociate interface %q: %w", iface.Link, err)
				}
				return nil
			}

			if err := h.links.DeleteVNIC(ctx, iface.Link, false); err != nil {
				return err
			}
			if err := h.storage.DeleteInterface(ctx, h.host, iface.Link, iface.Class); err != nil {
				return fmt.Errorf("could not delete the interface record of %q: %w", iface.Link, err)
			}
			if err := h.storage.DeleteUsageByLink(ctx, h.host, iface.Link); err != nil {
				return fmt.Errorf("could not delete the usage samples of %q: %w", iface.Link, err)
			}
			return nil
		})
	}

	return group.Wait().ErrorOrNil()
}
