package link

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// EtherstubCreate creates an etherstub and records it.
func (h *Handlers) EtherstubCreate(ctx context.Context, task model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.EtherstubCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.CreateEtherstub(ctx, p.Link, p.Temporary); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("etherstub %q created", p.Link),
		CleanupError: cleanupString(h.recordInterface(ctx, p.Link, model.LinkClassEtherstub, task.ZoneName)),
	}, nil
}

// EtherstubDelete removes an etherstub. With force it deletes the dependent
// VNICs first, the platform refuses to delete a stub that still has any.
// VNICs deleted before a later failure stay gone, so their records are swept
// even when the task itself fails.
func (h *Handlers) EtherstubDelete(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.EtherstubDeletePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	logger := h.logger.WithValues(log.Kv{"link": p.Link})

	var removed []string
	if p.Force {
		vnics, err := h.links.VNICsOver(ctx, p.Link)
		if err != nil {
			return nil, fmt.Errorf("could not list the VNICs over %q: %w", p.Link, err)
		}
		for _, vnic := range vnics {
			if err := h.links.DeleteVNIC(ctx, vnic, false); err != nil {
				h.forgetRemoved(ctx, removed, logger)
				return nil, fmt.Errorf("could not delete dependent VNIC %q: %w", vnic, err)
			}
			removed = append(removed, vnic)
		}
		if len(removed) > 0 {
			logger.Infof("Removed %d dependent VNICs", len(removed))
		}
	}

	if err := h.links.DeleteEtherstub(ctx, p.Link, p.Temporary); err != nil {
		h.forgetRemoved(ctx, removed, logger)
		return nil, err
	}

	var cleanups *multierror.Error
	for _, link := range removed {
		cleanups = multierror.Append(cleanups, h.forgetInterface(ctx, link, model.LinkClassVNIC))
	}
	cleanups = multierror.Append(cleanups, h.forgetInterface(ctx, p.Link, model.LinkClassEtherstub))

	message := fmt.Sprintf("etherstub %q deleted", p.Link)
	if len(removed) > 0 {
		message = fmt.Sprintf("%s, %d dependent vnics removed", message, len(removed))
	}

	return &queue.Result{
		Message:      message,
		CleanupError: cleanupString(cleanups.ErrorOrNil()),
	}, nil
}

// forgetRemoved sweeps the records of VNICs that are already gone from the
// system. The caller is in the middle of reporting a bigger problem, sweep
// failures only log.
func (h *Handlers) forgetRemoved(ctx context.Context, links []string, logger log.Logger) {
	for _, link := range links {
		if err := h.forgetInterface(ctx, link, model.LinkClassVNIC); err != nil {
			logger.Warningf("Could not clean up the records of removed VNIC %q: %s", link, err)
		}
	}
}
