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

	"github.com/google/uuid"

	"github.com/cardinalhq/taskrunner/lifecycle"
)

type ApplyPenaltyParams struct {
	TaskID          uuid.UUID
	ExpectedVersion int64
	WorkerID        uuid.UUID
	Debit           int32
}

type ApplyPenaltyRow struct {
	NewReputation int32
	Locked        bool
}

// LockAfterDebit decides whether a post-debit worker row crosses the
// lockout boundary. Reputation is not clamped at zero: the stored value may
// go negative, the lock is what stops further damage. Administrative and
// system roles are exempt from locking.
func LockAfterDebit(role lifecycle.Role, reputation int32) bool {
	return reputation <= 0 && role != lifecycle.RoleAdmin && role != lifecycle.RoleSystem
}

// ApplyPenalty requeues an overdue task and debits its assignee in a single
// transaction, so the task cannot end up debited-but-not-requeued or the
// reverse. The task write is version-guarded like any other mutation; a
// concurrent event on the task aborts the whole unit with
// ErrVersionConflict. The debit is computed in SQL relative to the current
// committed reputation, so two sweeps penalizing distinct tasks of the same
// worker both land; the lock decision uses the value that UPDATE returned.
func (s *Store) ApplyPenalty(ctx context.Context, params ApplyPenaltyParams) (ApplyPenaltyRow, error) {
	var result ApplyPenaltyRow
	err := s.execTx(ctx, func(tx *Store) error {
		task, err := tx.GetTask(ctx, params.TaskID)
		if err != nil {
			return err
		}
		_, err = tx.UpdateTask(ctx, UpdateTaskParams{
			ID:                 params.TaskID,
			State:              lifecycle.StatePending,
			AssigneeWorkerID:   nil,
			AssignedOrgID:      nil,
			Penalized:          true,
			AccumulatedSeconds: task.AccumulatedSeconds,
			TimerStartedAt:     nil,
			TimerStatus:        lifecycle.TimerStopped,
			ExpectedVersion:    params.ExpectedVersion,
		})
		if err != nil {
			return err
		}

		row, err := tx.DebitWorkerReputation(ctx, params.WorkerID, params.Debit)
		if err != nil {
			return err
		}
		result.NewReputation = row.Reputation
		if LockAfterDebit(row.Role, row.Reputation) {
			if err := tx.SetWorkerRole(ctx, params.WorkerID, lifecycle.RoleLocked); err != nil {
				return err
			}
			result.Locked = true
		}
		return nil
	})
	return result, err
}
