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

// Package taskmgr orchestrates task lifecycle transitions: it validates
// moves against the transition table, enforces actor roles, consults the
// availability checker before assignments, and persists state plus side
// effects under optimistic concurrency.
package taskmgr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/taskrunner/availability"
	"github.com/cardinalhq/taskrunner/lifecycle"
	"github.com/cardinalhq/taskrunner/taskdb"
)

// TaskDB defines the database operations needed by the service.
type TaskDB interface {
	GetTask(ctx context.Context, id uuid.UUID) (taskdb.Task, error)
	UpdateTask(ctx context.Context, params taskdb.UpdateTaskParams) (taskdb.Task, error)
	GetWorker(ctx context.Context, id uuid.UUID) (taskdb.Worker, error)
}

// Ensure taskdb.Store satisfies TaskDB interface.
var _ TaskDB = (*taskdb.Store)(nil)

// AvailabilityChecker is the advisory conflict probe consulted before
// assigning a task to a specific worker.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, workerID uuid.UUID, instant time.Time) availability.Availability
}

var _ AvailabilityChecker = (*availability.Checker)(nil)

// RejectKind classifies why a requested event was not applied. The kinds
// are deliberately distinct: "this can't be done" (illegal_transition) and
// "you can't do this" (forbidden) must never collapse into each other.
type RejectKind string

const (
	RejectIllegalTransition    RejectKind = "illegal_transition"
	RejectForbidden            RejectKind = "forbidden"
	RejectStaleWrite           RejectKind = "stale_write"
	RejectAvailabilityConflict RejectKind = "availability_conflict"
)

// ApplyRequest describes one attempted lifecycle event.
type ApplyRequest struct {
	TaskID    uuid.UUID
	Event     lifecycle.Event
	ActorRole lifecycle.Role
	ActorID   uuid.UUID

	// AssigneeID names the worker receiving the task on assign. Nil means
	// the task is being pooled into an organization without an individual
	// assignee, which skips the availability probe.
	AssigneeID *uuid.UUID

	// TargetState, when non-empty, must match the table's destination for
	// Event; it exists for callers that double-check where they will land.
	TargetState lifecycle.State

	// ForceOverlap accepts a previously reported availability conflict.
	ForceOverlap bool
}

// Result is the outcome of ApplyEvent. Rejections are values, not errors:
// only storage failures surface as Go errors.
type Result struct {
	OK        bool
	NewState  lifecycle.State
	Kind      RejectKind
	Detail    string
	Conflicts []taskdb.AvailabilityBlock
}

func reject(kind RejectKind, detail string) Result {
	return Result{Kind: kind, Detail: detail}
}

// Service applies lifecycle events to tasks.
type Service struct {
	table   *lifecycle.Table
	db      TaskDB
	checker AvailabilityChecker
	now     func() time.Time
}

// NewService constructs a Service around an injected transition table.
func NewService(table *lifecycle.Table, db TaskDB, checker AvailabilityChecker, opts ...Option) *Service {
	s := &Service{
		table:   table,
		db:      db,
		checker: checker,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// ApplyEvent loads the task, validates the requested event, enforces the
// actor's role, probes availability on assignment, and persists the new
// state together with its side effects in one version-conditioned write.
func (s *Service) ApplyEvent(ctx context.Context, req ApplyRequest) (Result, error) {
	task, err := s.db.GetTask(ctx, req.TaskID)
	if err != nil {
		return Result{}, fmt.Errorf("load task %s: %w", req.TaskID, err)
	}

	if _, err := s.table.ValidateEvent(task.State, req.Event, req.TargetState); err != nil {
		return reject(RejectIllegalTransition, err.Error()), nil
	}
	if !s.table.RoleAllowed(req.Event, req.ActorRole) {
		return reject(RejectForbidden,
			fmt.Sprintf("role %s may not fire event %s", req.ActorRole, req.Event)), nil
	}

	now := s.now()
	params := taskdb.UpdateTaskParams{
		ID:                 task.ID,
		State:              task.State,
		AssigneeWorkerID:   task.AssigneeWorkerID,
		AssignedOrgID:      task.AssignedOrgID,
		Penalized:          task.Penalized,
		AccumulatedSeconds: task.AccumulatedSeconds,
		TimerStartedAt:     task.TimerStartedAt,
		TimerStatus:        task.TimerStatus,
		ExpectedVersion:    task.Version,
	}
	// ValidateEvent already vouched for the row's existence.
	tr, _ := s.table.Lookup(req.Event)
	params.State = tr.To

	switch req.Event {
	case lifecycle.EventAssign:
		if req.AssigneeID != nil {
			worker, err := s.db.GetWorker(ctx, *req.AssigneeID)
			if err != nil {
				return Result{}, fmt.Errorf("load worker %s: %w", *req.AssigneeID, err)
			}
			if !req.ForceOverlap {
				avail := s.checker.IsAvailable(ctx, worker.ID, now)
				if !avail.Available {
					r := reject(RejectAvailabilityConflict,
						fmt.Sprintf("worker %s has %d conflicting busy block(s); re-invoke with force to override",
							worker.ID, len(avail.Conflicts)))
					r.Conflicts = avail.Conflicts
					return r, nil
				}
			}
			params.AssigneeWorkerID = req.AssigneeID
			// Keep the org linkage consistent with the assignee.
			params.AssignedOrgID = worker.OrgID
		}
		// A reassignment opens a fresh deadline risk.
		params.Penalized = false

	case lifecycle.EventStart, lifecycle.EventResume:
		params.TimerStartedAt = &now
		params.TimerStatus = lifecycle.TimerRunning

	case lifecycle.EventPause, lifecycle.EventSubmit:
		if task.TimerStatus == lifecycle.TimerRunning && task.TimerStartedAt != nil {
			params.AccumulatedSeconds += int64(now.Sub(*task.TimerStartedAt).Seconds())
		}
		params.TimerStartedAt = nil
		params.TimerStatus = lifecycle.TimerStopped

	case lifecycle.EventUnassign, lifecycle.EventPenalize:
		params.AssigneeWorkerID = nil
		params.AssignedOrgID = nil
		params.TimerStartedAt = nil
		params.TimerStatus = lifecycle.TimerStopped
		if req.Event == lifecycle.EventPenalize {
			params.Penalized = true
		}
	}

	updated, err := s.db.UpdateTask(ctx, params)
	if err != nil {
		if errors.Is(err, taskdb.ErrVersionConflict) {
			return reject(RejectStaleWrite,
				fmt.Sprintf("task %s changed since version %d was read", task.ID, task.Version)), nil
		}
		return Result{}, fmt.Errorf("save task %s: %w", task.ID, err)
	}

	return Result{OK: true, NewState: updated.State}, nil
}
