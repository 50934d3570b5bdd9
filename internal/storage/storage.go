package storage

import (
	"context"
	"time"

	"github.com/slok/zonectl/internal/model"
)

// TaskListFilter narrows task listings. Zero values mean no filtering.
type TaskListFilter struct {
	Statuses  []model.TaskStatus
	Operation model.Operation
	ZoneName  string
	// Limit caps the number of returned tasks, newest first. Zero means all.
	Limit int
}

// TaskRepository is the interface for task queue persistence.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// ClaimNextTask atomically moves the highest priority (then oldest, then
	// smallest id) pending task to running and returns it. No pending task
	// returns ErrNotFound. Two concurrent claimers never receive the same task.
	ClaimNextTask(ctx context.Context, host string) (*model.Task, error)
	// MarkTaskCompleted finishes a running task with an optional result
	// message and cleanup error note.
	MarkTaskCompleted(ctx context.Context, id string, message, cleanupError string) error
	// MarkTaskFailed finishes a running task with its failure reason.
	MarkTaskFailed(ctx context.Context, id string, reason string) error
	// MarkTaskCancelled cancels a pending task. Tasks in any other status
	// return ErrNotValid.
	MarkTaskCancelled(ctx context.Context, id string) error
	// MarkTaskReady moves a prepared task to pending, making it
	// dispatch-eligible. Tasks in any other status return ErrNotValid.
	MarkTaskReady(ctx context.Context, id string) error
	// CancelPendingTasksByZone cancels every pending task of a zone and
	// returns how many were cancelled.
	CancelPendingTasksByZone(ctx context.Context, host, zoneName string) (int, error)
	ListTasks(ctx context.Context, host string, filter TaskListFilter) ([]model.Task, error)
}

// ZoneRepository is the interface for zone record persistence.
type ZoneRepository interface {
	CreateZone(ctx context.Context, z model.Zone) error
	GetZone(ctx context.Context, host, name string) (*model.Zone, error)
	ListZones(ctx context.Context, host string) ([]model.Zone, error)
	UpdateZone(ctx context.Context, z model.Zone) error
	DeleteZone(ctx context.Context, host, name string) error
	// SetZoneOrphaned flips the orphan flag of a zone record.
	SetZoneOrphaned(ctx context.Context, host, name string, orphaned bool) error
}

// NetworkRepository is the interface for network interface and monitoring
// data persistence.
type NetworkRepository interface {
	// UpsertInterface creates the interface record or refreshes an existing
	// one in place, preserving its creation timestamp. Records are keyed by
	// host, link and class, a link name only collides within one class.
	UpsertInterface(ctx context.Context, n model.NetworkInterface) error
	GetInterface(ctx context.Context, host, link string, class model.LinkClass) (*model.NetworkInterface, error)
	ListInterfaces(ctx context.Context, host string) ([]model.NetworkInterface, error)
	ListInterfacesByZone(ctx context.Context, host, zoneName string) ([]model.NetworkInterface, error)
	DeleteInterface(ctx context.Context, host, link string, class model.LinkClass) error
	// AssignInterfaceZone sets or clears (empty zone) the zone association of
	// an interface.
	AssignInterfaceZone(ctx context.Context, host, link string, class model.LinkClass, zoneName string) error

	RecordUsage(ctx context.Context, u model.NetworkUsage) error
	RecordIPAddress(ctx context.Context, a model.IPAddress) error
	// LatestUsage returns the newest traffic sample of every link of the
	// host, sorted by link.
	LatestUsage(ctx context.Context, host string) ([]model.NetworkUsage, error)
	// LatestIPAddresses returns the newest observation of every address
	// object of the host, sorted by address object.
	LatestIPAddresses(ctx context.Context, host string) ([]model.IPAddress, error)
	DeleteUsageByLink(ctx context.Context, host, link string) error
	DeleteIPAddressesByLink(ctx context.Context, host, link string) error
	// DeleteUsageByLinkPrefix sweeps the monitoring rows of every link that
	// starts with the prefix (a zone's naming convention).
	DeleteUsageByLinkPrefix(ctx context.Context, host, prefix string) error
	DeleteIPAddressesByLinkPrefix(ctx context.Context, host, prefix string) error
	// PruneUsageBefore deletes usage samples older than the timestamp and
	// returns how many rows were removed.
	PruneUsageBefore(ctx context.Context, host string, before time.Time) (int, error)
	// PruneIPAddressesBefore deletes address observations older than the
	// timestamp and returns how many rows were removed.
	PruneIPAddressesBefore(ctx context.Context, host string, before time.Time) (int, error)
}

// Repository is the combined persistence interface of the orchestrator.
type Repository interface {
	TaskRepository
	ZoneRepository
	NetworkRepository
}
