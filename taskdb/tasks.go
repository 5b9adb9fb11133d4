// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package taskdb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cardinalhq/taskrunner/lifecycle"
)

const taskColumns = `id, state, assignee_worker_id, assigned_org_id, deadline, penalized,
	accumulated_seconds, timer_started_at, timer_status, version, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID,
		&t.State,
		&t.AssigneeWorkerID,
		&t.AssignedOrgID,
		&t.Deadline,
		&t.Penalized,
		&t.AccumulatedSeconds,
		&t.TimerStartedAt,
		&t.TimerStatus,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

// GetTask fetches one task by id, returning ErrNotFound if it does not exist.
func (q *Queries) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	row := q.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

type InsertTaskParams struct {
	ID            uuid.UUID
	AssignedOrgID *uuid.UUID
	Deadline      *time.Time
}

// InsertTask creates a task in the pool state at version 1.
func (q *Queries) InsertTask(ctx context.Context, params InsertTaskParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO tasks (id, state, assigned_org_id, deadline, penalized,
			accumulated_seconds, timer_status, version)
		VALUES ($1, $2, $3, $4, false, 0, $5, 1)`,
		params.ID, lifecycle.StatePending, params.AssignedOrgID, params.Deadline,
		lifecycle.TimerStopped)
	return err
}

// UpdateTaskParams carries every field a lifecycle event may mutate, plus
// the version the caller observed at read time. The write only applies when
// that version is still current.
type UpdateTaskParams struct {
	ID                 uuid.UUID
	State              lifecycle.State
	AssigneeWorkerID   *uuid.UUID
	AssignedOrgID      *uuid.UUID
	Penalized          bool
	AccumulatedSeconds int64
	TimerStartedAt     *time.Time
	TimerStatus        lifecycle.TimerStatus
	ExpectedVersion    int64
}

// UpdateTask applies a version-conditioned write and returns the updated
// row. A stale version yields ErrVersionConflict, a missing row ErrNotFound.
func (q *Queries) UpdateTask(ctx context.Context, params UpdateTaskParams) (Task, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tasks
		SET state = $2,
			assignee_worker_id = $3,
			assigned_org_id = $4,
			penalized = $5,
			accumulated_seconds = $6,
			timer_started_at = $7,
			timer_status = $8,
			version = version + 1,
			updated_at = now()
		WHERE id = $1 AND version = $9
		RETURNING `+taskColumns,
		params.ID, params.State, params.AssigneeWorkerID, params.AssignedOrgID,
		params.Penalized, params.AccumulatedSeconds, params.TimerStartedAt,
		params.TimerStatus, params.ExpectedVersion)

	task, err := scanTask(row)
	if !errors.Is(err, ErrNotFound) {
		return task, err
	}

	// Zero rows: distinguish a stale version from a vanished row.
	var exists bool
	if chkErr := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, params.ID).Scan(&exists); chkErr != nil {
		return Task{}, chkErr
	}
	if exists {
		return Task{}, ErrVersionConflict
	}
	return Task{}, ErrNotFound
}

// ListOverdueTasks returns tasks eligible for a penalty sweep: past their
// deadline, still active, not yet penalized, and held by a worker.
func (q *Queries) ListOverdueTasks(ctx context.Context, now time.Time) ([]Task, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE deadline IS NOT NULL
		  AND deadline < $1
		  AND state NOT IN ($2, $3)
		  AND penalized = false
		  AND assignee_worker_id IS NOT NULL
		ORDER BY deadline`,
		now, lifecycle.StateCompleted, lifecycle.StateCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
