package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusPrepared indicates the task is staged and not yet dispatch-eligible
	// (e.g. waiting for an artifact upload to finish).
	TaskStatusPrepared TaskStatus = "prepared"
	// TaskStatusPending indicates the task is waiting to be claimed by a dispatcher.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task has been claimed and its handler is executing.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the handler finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the handler returned an error.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusCancelled indicates the task was cancelled before being claimed.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// validTaskTransitions are the only allowed status transitions. Statuses are
// monotonic: a terminal task never moves again and failures are never retried
// in place, a retry is a new task.
var validTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPrepared: {TaskStatusPending},
	TaskStatusPending:  {TaskStatusRunning, TaskStatusCancelled},
	TaskStatusRunning:  {TaskStatusCompleted, TaskStatusFailed},
}

// ValidTaskTransition returns true if moving a task from one status to another
// is allowed by the status machine.
func ValidTaskTransition(from, to TaskStatus) bool {
	for _, s := range validTaskTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TaskPriority orders dispatch between pending tasks. Within a priority tier
// tasks dispatch oldest first.
type TaskPriority string

const (
	TaskPriorityLow        TaskPriority = "low"
	TaskPriorityBackground TaskPriority = "background"
	TaskPriorityMedium     TaskPriority = "medium"
	TaskPriorityHigh       TaskPriority = "high"
)

// priorityRanks maps priorities to their dispatch rank, higher dispatches first.
var priorityRanks = map[TaskPriority]int{
	TaskPriorityLow:        10,
	TaskPriorityBackground: 20,
	TaskPriorityMedium:     30,
	TaskPriorityHigh:       40,
}

// Rank returns the numeric dispatch rank of the priority, higher first.
func (p TaskPriority) Rank() int { return priorityRanks[p] }

// Valid returns true if the priority is a known one.
func (p TaskPriority) Valid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// TaskPriorityFromRank maps a stored numeric rank back to its priority.
func TaskPriorityFromRank(rank int) (TaskPriority, error) {
	for p, r := range priorityRanks {
		if r == rank {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority rank %d: %w", rank, ErrNotValid)
}

// Operation identifies what a task does. The string values are the wire
// contract between enqueuing callers and handlers.
type Operation string

const (
	OperationZoneCreate   Operation = "zone_create"
	OperationZoneStart    Operation = "zone_start"
	OperationZoneStop     Operation = "zone_stop"
	OperationZoneRestart  Operation = "zone_restart"
	OperationZoneDelete   Operation = "zone_delete"
	OperationZoneDiscover Operation = "zone_discover"

	OperationVNICCreate   Operation = "vnic_create"
	OperationVNICDelete   Operation = "vnic_delete"
	OperationVNICSetProps Operation = "vnic_set_props"

	OperationVLANCreate Operation = "vlan_create"
	OperationVLANDelete Operation = "vlan_delete"

	OperationAggrCreate      Operation = "aggr_create"
	OperationAggrDelete      Operation = "aggr_delete"
	OperationAggrModifyLinks Operation = "aggr_modify_links"

	OperationEtherstubCreate Operation = "etherstub_create"
	OperationEtherstubDelete Operation = "etherstub_delete"

	OperationBootEnvCreate   Operation = "be_create"
	OperationBootEnvDelete   Operation = "be_delete"
	OperationBootEnvActivate Operation = "be_activate"
	OperationBootEnvMount    Operation = "be_mount"
	OperationBootEnvUnmount  Operation = "be_unmount"

	// OperationArtifactProcess is enqueued ahead of its artifact upload, so it
	// stages as prepared and only becomes dispatchable through an external
	// ready transition once the upload lands.
	OperationArtifactProcess Operation = "artifact_upload_process"
)

var knownOperations = map[Operation]struct{}{
	OperationZoneCreate:      {},
	OperationZoneStart:       {},
	OperationZoneStop:        {},
	OperationZoneRestart:     {},
	OperationZoneDelete:      {},
	OperationZoneDiscover:    {},
	OperationVNICCreate:      {},
	OperationVNICDelete:      {},
	OperationVNICSetProps:    {},
	OperationVLANCreate:      {},
	OperationVLANDelete:      {},
	OperationAggrCreate:      {},
	OperationAggrDelete:      {},
	OperationAggrModifyLinks: {},
	OperationEtherstubCreate: {},
	OperationEtherstubDelete: {},
	OperationBootEnvCreate:   {},
	OperationBootEnvDelete:   {},
	OperationBootEnvActivate: {},
	OperationBootEnvMount:    {},
	OperationBootEnvUnmount:  {},
	OperationArtifactProcess: {},
}

// Valid returns true if the operation is a known one.
func (o Operation) Valid() bool {
	_, ok := knownOperations[o]
	return ok
}

// Staged returns true if tasks for this operation enqueue as prepared instead
// of pending.
func (o Operation) Staged() bool { return o == OperationArtifactProcess }

// Task is a queued administrative operation against the host.
type Task struct {
	ID        string
	Host      string
	ZoneName  string
	Operation Operation
	Priority  TaskPriority
	Status    TaskStatus
	CreatedBy string
	// Metadata is the operation-specific document, opaque to the queue until
	// decoded at the dispatch boundary.
	Metadata json.RawMessage
	// Message is the human readable result of a completed task.
	Message string
	// Error is the failure reason of a failed task.
	Error string
	// CleanupError reports secondary store cleanup that failed after the
	// system change itself succeeded.
	CleanupError string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate validates the task model.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}
	if t.Host == "" {
		return fmt.Errorf("task host is required: %w", ErrNotValid)
	}
	if !t.Operation.Valid() {
		return fmt.Errorf("unknown operation %q: %w", t.Operation, ErrNotValid)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("unknown priority %q: %w", t.Priority, ErrNotValid)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("task created at is required: %w", ErrNotValid)
	}
	return nil
}
