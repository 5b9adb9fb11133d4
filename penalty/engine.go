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

// Package penalty sweeps overdue tasks back into the pool and debits the
// responsible worker's reputation. A sweep may run on a schedule or
// on demand; the penalized flag on each task makes repeated invocation
// idempotent.
package penalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/taskrunner/internal/logctx"
	"github.com/cardinalhq/taskrunner/lifecycle"
	"github.com/cardinalhq/taskrunner/taskdb"
)

// DefaultDebit is the reputation cost of one missed deadline.
const DefaultDebit = 10

// SweepDB defines the database operations needed by the engine.
type SweepDB interface {
	ListOverdueTasks(ctx context.Context, now time.Time) ([]taskdb.Task, error)
	ApplyPenalty(ctx context.Context, params taskdb.ApplyPenaltyParams) (taskdb.ApplyPenaltyRow, error)
}

// Ensure taskdb.Store satisfies SweepDB interface.
var _ SweepDB = (*taskdb.Store)(nil)

// Processed records one applied penalty for the caller to report on. The
// engine never delivers notifications itself.
type Processed struct {
	WorkerID      uuid.UUID
	TaskID        uuid.UUID
	NewReputation int32
	Locked        bool
	Reason        string
}

// SweepResult is the outcome of one sweep invocation.
type SweepResult struct {
	Processed []Processed
}

// Engine drives overdue tasks through the penalize transition.
type Engine struct {
	db    SweepDB
	table *lifecycle.Table
	debit int32
}

// NewEngine constructs an engine over the given store and transition table.
func NewEngine(db SweepDB, table *lifecycle.Table, opts ...Option) *Engine {
	e := &Engine{
		db:    db,
		table: table,
		debit: DefaultDebit,
	}
	for _, opt := range opts {
		opt.apply(e)
	}
	return e
}

// RunSweep penalizes every task that is past its deadline, still active,
// assigned, and not yet penalized. Each task is handled in its own atomic
// unit: a failure on one task is logged and the sweep moves on, so a single
// concurrent modification cannot abort penalties for everyone else.
func (e *Engine) RunSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	ll := logctx.FromContext(ctx)

	tasks, err := e.db.ListOverdueTasks(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list overdue tasks: %w", err)
	}

	var result SweepResult
	for _, task := range tasks {
		// The transition table decides which states permit penalization;
		// states like paused or fixing are overdue but not penalizable.
		if _, err := e.table.ValidateEvent(task.State, lifecycle.EventPenalize, ""); err != nil {
			ll.Debug("skipping overdue task, state not penalizable",
				slog.String("taskID", task.ID.String()),
				slog.String("state", string(task.State)))
			continue
		}
		if task.AssigneeWorkerID == nil {
			continue
		}
		workerID := *task.AssigneeWorkerID

		row, err := e.db.ApplyPenalty(ctx, taskdb.ApplyPenaltyParams{
			TaskID:          task.ID,
			ExpectedVersion: task.Version,
			WorkerID:        workerID,
			Debit:           e.debit,
		})
		if err != nil {
			// A version conflict means someone acted on the task after we
			// read it; the next sweep re-evaluates it from fresh state.
			if errors.Is(err, taskdb.ErrVersionConflict) {
				ll.Info("task changed during sweep, skipping",
					slog.String("taskID", task.ID.String()))
			} else {
				ll.Error("failed to penalize task (continuing)",
					slog.String("taskID", task.ID.String()),
					slog.String("workerID", workerID.String()),
					slog.Any("error", err))
			}
			continue
		}

		recordPenaltyApplied()
		if row.Locked {
			recordWorkerLocked()
		}
		reason := "missed deadline"
		if task.Deadline != nil {
			reason = fmt.Sprintf("missed deadline %s", task.Deadline.UTC().Format(time.RFC3339))
		}
		result.Processed = append(result.Processed, Processed{
			WorkerID:      workerID,
			TaskID:        task.ID,
			NewReputation: row.NewReputation,
			Locked:        row.Locked,
			Reason:        reason,
		})
	}
	return result, nil
}
