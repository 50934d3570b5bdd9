package link

import (
	"context"
	"fmt"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// VLANCreate creates a tagged VLAN link over a lower link and records it.
func (h *Handlers) VLANCreate(ctx context.Context, task model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.VLANCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.CreateVLAN(ctx, p); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("vlan %q (vid %d) created over %q", p.Link, p.VlanID, p.Lower),
		CleanupError: cleanupString(h.recordInterface(ctx, p.Link, model.LinkClassVLAN, task.ZoneName)),
	}, nil
}

// VLANDelete removes a VLAN link and its records.
func (h *Handlers) VLANDelete(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.VLANDeletePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.DeleteVLAN(ctx, p.Link, p.Temporary); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("vlan %q deleted", p.Link),
		CleanupError: cleanupString(h.forgetInterface(ctx, p.Link, model.LinkClassVLAN)),
	}, nil
}
