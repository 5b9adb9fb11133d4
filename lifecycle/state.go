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

package lifecycle

import "fmt"

// State labels a task's position in the lifecycle.
type State string

const (
	StatePending    State = "pending"
	StateAssigned   State = "assigned"
	StateInProgress State = "in_progress"
	StateReview     State = "review"
	StateRevision   State = "revision"
	StateFixing     State = "fixing"
	StatePaused     State = "paused"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

// AllStates lists every declared state, in lifecycle order.
var AllStates = []State{
	StatePending,
	StateAssigned,
	StateInProgress,
	StateReview,
	StateRevision,
	StateFixing,
	StatePaused,
	StateCompleted,
	StateCancelled,
}

// Terminal reports whether no event can move a task out of s under any
// production policy. Terminal states are excluded from penalty sweeps.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

func ParseState(v string) (State, error) {
	s := State(v)
	for _, known := range AllStates {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown task state %q", v)
}

// Event names a lifecycle move. Events, not states, are the unit of
// permission: each event carries the role set allowed to fire it.
type Event string

const (
	EventAssign     Event = "assign"
	EventStart      Event = "start"
	EventSubmit     Event = "submit"
	EventReject     Event = "reject"
	EventRequestFix Event = "request_fix"
	EventResumeFix  Event = "resume_fix"
	EventFinish     Event = "finish"
	EventPause      Event = "pause"
	EventResume     Event = "resume"
	EventUnassign   Event = "unassign"
	EventPenalize   Event = "penalize"
	EventBackToWork Event = "back_to_work"
)

func ParseEvent(v string) (Event, error) {
	switch e := Event(v); e {
	case EventAssign, EventStart, EventSubmit, EventReject, EventRequestFix,
		EventResumeFix, EventFinish, EventPause, EventResume, EventUnassign,
		EventPenalize, EventBackToWork:
		return e, nil
	default:
		return "", fmt.Errorf("unknown event %q", v)
	}
}

// Role is the actor class attempting an event. RoleLocked is entered
// automatically when a worker's reputation is exhausted; it appears in no
// event's permitted set, so locked workers can observe but not act.
type Role string

const (
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system"
	RoleLocked Role = "locked"
)

func ParseRole(v string) (Role, error) {
	switch r := Role(v); r {
	case RoleWorker, RoleAdmin, RoleSystem, RoleLocked:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", v)
	}
}

// TimerStatus tracks the work clock on a task.
type TimerStatus string

const (
	TimerStopped TimerStatus = "stopped"
	TimerRunning TimerStatus = "running"
)
