package link

import (
	"context"
	"fmt"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// VNICCreate creates a VNIC over a lower link and records it.
func (h *Handlers) VNICCreate(ctx context.Context, task model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.VNICCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.CreateVNIC(ctx, p); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("vnic %q created over %q", p.Link, p.Lower),
		CleanupError: cleanupString(h.recordInterface(ctx, p.Link, model.LinkClassVNIC, task.ZoneName)),
	}, nil
}

// VNICDelete removes a VNIC and its records.
func (h *Handlers) VNICDelete(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.VNICDeletePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.DeleteVNIC(ctx, p.Link, p.Temporary); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("vnic %q deleted", p.Link),
		CleanupError: cleanupString(h.forgetInterface(ctx, p.Link, model.LinkClassVNIC)),
	}, nil
}

// VNICSetProps applies the property batch on a link. The platform applies
// the whole batch in one invocation, there is no partial application to
// report.
func (h *Handlers) VNICSetProps(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.VNICSetPropsPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.SetLinkProps(ctx, p.Link, p.Props); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message: fmt.Sprintf("%d properties set on %q", len(p.Props), p.Link),
	}, nil
}
