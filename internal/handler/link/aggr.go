package link

import (
	"context"
	"fmt"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// AggrCreate creates a link aggregation over its member links and records
// it.
func (h *Handlers) AggrCreate(ctx context.Context, task model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.AggrCreatePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.CreateAggr(ctx, p); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("aggr %q created over %d links", p.Link, len(p.Links)),
		CleanupError: cleanupString(h.recordInterface(ctx, p.Link, model.LinkClassAggr, task.ZoneName)),
	}, nil
}

// AggrDelete removes an aggregation and its records.
func (h *Handlers) AggrDelete(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.AggrDeletePayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if err := h.links.DeleteAggr(ctx, p.Link, p.Temporary); err != nil {
		return nil, err
	}

	return &queue.Result{
		Message:      fmt.Sprintf("aggr %q deleted", p.Link),
		CleanupError: cleanupString(h.forgetInterface(ctx, p.Link, model.LinkClassAggr)),
	}, nil
}

// AggrModifyLinks adds and removes member links of an aggregation, in that
// order. A failed removal after a successful addition leaves the aggregation
// partially modified, the error says so because the failed task record is
// all the operator gets.
func (h *Handlers) AggrModifyLinks(ctx context.Context, _ model.Task, payload model.TaskPayload) (*queue.Result, error) {
	p, ok := payload.(model.AggrModifyLinksPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata payload %T", payload)
	}

	if len(p.Add) > 0 {
		if err := h.links.AddAggrLinks(ctx, p.Link, p.Add, p.Temporary); err != nil {
			return nil, err
		}
	}

	if len(p.Remove) > 0 {
		if err := h.links.RemoveAggrLinks(ctx, p.Link, p.Remove, p.Temporary); err != nil {
			if len(p.Add) > 0 {
				return nil, fmt.Errorf("aggr %q partially modified, %d links added but the removal failed: %w", p.Link, len(p.Add), err)
			}
			return nil, err
		}
	}

	return &queue.Result{
		Message: fmt.Sprintf("aggr %q modified, %d links added, %d removed", p.Link, len(p.Add), len(p.Remove)),
	}, nil
}
