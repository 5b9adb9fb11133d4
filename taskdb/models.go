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
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/taskrunner/lifecycle"
)

// Task is one assignable unit of work. Version implements optimistic
// concurrency: every persisted mutation increments it, and a write that did
// not observe the current value is rejected with ErrVersionConflict.
type Task struct {
	ID                 uuid.UUID
	State              lifecycle.State
	AssigneeWorkerID   *uuid.UUID
	AssignedOrgID      *uuid.UUID
	Deadline           *time.Time
	Penalized          bool
	AccumulatedSeconds int64
	TimerStartedAt     *time.Time
	TimerStatus        lifecycle.TimerStatus
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Worker is an actor who can hold tasks. Reputation starts at 100 and is
// only ever decremented by the penalty engine; restoration is a manual
// administrative action.
type Worker struct {
	ID         uuid.UUID
	Role       lifecycle.Role
	Reputation int32
	OrgID      *uuid.UUID
}

// BlockType classifies an availability block. Only busy blocks participate
// in overlap detection.
type BlockType string

const (
	BlockTypeBusy      BlockType = "busy"
	BlockTypeOvertime  BlockType = "overtime"
	BlockTypeAvailable BlockType = "available"
)

// AvailabilityBlock is a declared time interval owned by one worker.
type AvailabilityBlock struct {
	ID        uuid.UUID
	WorkerID  uuid.UUID
	BlockType BlockType
	StartsAt  time.Time
	EndsAt    time.Time
}
