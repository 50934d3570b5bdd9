package zone

import (
	"context"
	"fmt"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

// Discover runs a reconciliation pass followed by a network scan. Scan
// problems do not fail the task, the zone records are already in sync and the
// next pass samples again.
func (h *Handlers) Discover(ctx context.Context, _ model.Task, _ model.TaskPayload) (*queue.Result, error) {
	result, err := h.reconciler.Run(ctx)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("%d zones discovered, %d newly orphaned, %d refreshed",
		result.Discovered, result.Orphaned, result.Refreshed)

	cleanup := ""
	network, err := h.reconciler.ScanNetworks(ctx)
	if err != nil {
		cleanup = fmt.Sprintf("network scan: %s", err)
	} else {
		message = fmt.Sprintf("%s, %d links scanned", message, network.Interfaces)
	}

	return &queue.Result{Message: message, CleanupError: cleanup}, nil
}
