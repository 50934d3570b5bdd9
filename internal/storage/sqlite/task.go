package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/storage"
)

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	query := `
		INSERT INTO tasks (
			id, host, zone_name, operation, priority, status, created_by,
			metadata, message, error, cleanup_error, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Host,
		t.ZoneName,
		t.Operation,
		t.Priority.Rank(),
		t.Status,
		t.CreatedBy,
		string(t.Metadata),
		t.Message,
		t.Error,
		t.CleanupError,
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.") {
			return fmt.Errorf("task already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task: %w", err)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := taskSelect + ` WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	task, err := r.scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	return &task, nil
}

// ClaimNextTask atomically claims the best pending task of the host.
//
// Claiming is a pick-then-verify loop: select the best candidate, then move
// it to running guarded on it still being pending. A concurrent claimer that
// wins the race makes the guarded update touch zero rows, in which case we
// pick again. The loop only ends with a claimed task or an empty queue.
func (r *Repository) ClaimNextTask(ctx context.Context, host string) (*model.Task, error) {
	for {
		var id string
		err := r.db.QueryRowContext(ctx, `
			SELECT id FROM tasks
			WHERE host = ? AND status = ?
			ORDER BY priority DESC, created_at ASC, id ASC
			LIMIT 1
		`, host, model.TaskStatusPending).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("no pending task for host %s: %w", host, model.ErrNotFound)
			}
			return nil, fmt.Errorf("could not query next task: %w", err)
		}

		result, err := r.db.ExecContext(ctx, `
			UPDATE tasks SET status = ?, updated_at = ?
			WHERE id = ? AND status = ?
		`, model.TaskStatusRunning, time.Now().UTC().Unix(), id, model.TaskStatusPending)
		if err != nil {
			return nil, fmt.Errorf("could not claim task: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("could not get rows affected: %w", err)
		}
		if rows == 0 {
			// Lost the race, another claimer took it.
			continue
		}

		r.logger.Debugf("Claimed task: %s", id)
		return r.GetTask(ctx, id)
	}
}

// MarkTaskCompleted finishes a running task successfully.
func (r *Repository) MarkTaskCompleted(ctx context.Context, id string, message, cleanupError string) error {
	query := `
		UPDATE tasks SET status = ?, message = ?, cleanup_error = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	args := []any{model.TaskStatusCompleted, message, cleanupError, time.Now().UTC().Unix(), id, model.TaskStatusRunning}

	return r.transitionTask(ctx, id, model.TaskStatusCompleted, query, args)
}

// MarkTaskFailed finishes a running task with its failure reason.
func (r *Repository) MarkTaskFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE tasks SET status = ?, error = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	args := []any{model.TaskStatusFailed, reason, time.Now().UTC().Unix(), id, model.TaskStatusRunning}

	return r.transitionTask(ctx, id, model.TaskStatusFailed, query, args)
}

// MarkTaskCancelled cancels a pending task.
func (r *Repository) MarkTaskCancelled(ctx context.Context, id string) error {
	query := `
		UPDATE tasks SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	args := []any{model.TaskStatusCancelled, time.Now().UTC().Unix(), id, model.TaskStatusPending}

	return r.transitionTask(ctx, id, model.TaskStatusCancelled, query, args)
}

// MarkTaskReady moves a prepared task to pending.
func (r *Repository) MarkTaskReady(ctx context.Context, id string) error {
	query := `
		UPDATE tasks SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	args := []any{model.TaskStatusPending, time.Now().UTC().Unix(), id, model.TaskStatusPrepared}

	return r.transitionTask(ctx, id, model.TaskStatusPending, query, args)
}

// transitionTask runs a status-guarded update. Zero affected rows means the
// task either does not exist (ErrNotFound) or is not in the status the guard
// requires (ErrNotValid).
func (r *Repository) transitionTask(ctx context.Context, id string, to model.TaskStatus, query string, args []any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows > 0 {
		r.logger.Debugf("Task %s is now %s", id, to)
		return nil
	}

	current, err := r.GetTask(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("task %s cannot move from %s to %s: %w", id, current.Status, to, model.ErrNotValid)
}

// CancelPendingTasksByZone cancels every pending task of a zone.
func (r *Repository) CancelPendingTasksByZone(ctx context.Context, host, zoneName string) (int, error) {
	query := `
		UPDATE tasks SET status = ?, updated_at = ?
		WHERE host = ? AND zone_name = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		model.TaskStatusCancelled, time.Now().UTC().Unix(), host, zoneName, model.TaskStatusPending)
	if err != nil {
		return 0, fmt.Errorf("could not cancel tasks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}

	r.logger.Debugf("Cancelled %d pending tasks of zone %s", rows, zoneName)
	return int(rows), nil
}

// ListTasks returns the tasks of a host matching the filter, newest first.
func (r *Repository) ListTasks(ctx context.Context, host string, filter storage.TaskListFilter) ([]model.Task, error) {
	query := taskSelect
	where := []string{"host = ?"}
	args := []any{host}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, "?")
			args = append(args, status)
		}
		where = append(where, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Operation != "" {
		where = append(where, "operation = ?")
		args = append(args, filter.Operation)
	}
	if filter.ZoneName != "" {
		where = append(where, "zone_name = ?")
		args = append(args, filter.ZoneName)
	}
	query += " WHERE " + strings.Join(where, " AND ")

	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

const taskSelect = `
	SELECT
		id, host, zone_name, operation, priority, status, created_by,
		metadata, message, error, cleanup_error, created_at, updated_at
	FROM tasks`

func (r *Repository) scanTask(s scanner) (model.Task, error) {
	var task model.Task
	var priorityRank int
	var metadata string
	var createdAt, updatedAt int64

	err := s.Scan(
		&task.ID,
		&task.Host,
		&task.ZoneName,
		&task.Operation,
		&priorityRank,
		&task.Status,
		&task.CreatedBy,
		&metadata,
		&task.Message,
		&task.Error,
		&task.CleanupError,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	task.Priority, err = model.TaskPriorityFromRank(priorityRank)
	if err != nil {
		return model.Task{}, fmt.Errorf("could not map task priority: %w", err)
	}
	if metadata != "" {
		task.Metadata = json.RawMessage(metadata)
	}
	task.CreatedAt = timeFromUnix(createdAt)
	task.UpdatedAt = timeFromUnix(updatedAt)

	return task, nil
}
