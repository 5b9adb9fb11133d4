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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEvent(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name    string
		current State
		event   Event
		target  State
		want    State
		wantErr string
	}{
		{
			name:    "assign from pending",
			current: StatePending,
			event:   EventAssign,
			want:    StateAssigned,
		},
		{
			name:    "reassign while assigned",
			current: StateAssigned,
			event:   EventAssign,
			want:    StateAssigned,
		},
		{
			name:    "start from paused",
			current: StatePaused,
			event:   EventStart,
			want:    StateInProgress,
		},
		{
			name:    "reopen a completed task",
			current: StateCompleted,
			event:   EventReject,
			want:    StateRevision,
		},
		{
			name:    "resume_fix self loop",
			current: StateFixing,
			event:   EventResumeFix,
			want:    StateFixing,
		},
		{
			name:    "matching explicit target",
			current: StateReview,
			event:   EventFinish,
			target:  StateCompleted,
			want:    StateCompleted,
		},
		{
			name:    "start from pending is illegal",
			current: StatePending,
			event:   EventStart,
			wantErr: "illegal source state for event",
		},
		{
			name:    "penalize from paused is illegal",
			current: StatePaused,
			event:   EventPenalize,
			wantErr: "illegal source state for event",
		},
		{
			name:    "mismatched explicit target",
			current: StateReview,
			event:   EventFinish,
			target:  StatePending,
			wantErr: "event yields a different target",
		},
		{
			name:    "unknown event",
			current: StatePending,
			event:   "teleport",
			wantErr: "unknown event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.ValidateEvent(tt.current, tt.event, tt.target)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var terr *TransitionError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, tt.current, terr.Current)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateTarget(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name    string
		current State
		target  State
		want    []Event
		wantErr bool
	}{
		{
			name:    "review to fixing matches request_fix",
			current: StateReview,
			target:  StateFixing,
			want:    []Event{EventRequestFix},
		},
		{
			name:    "assigned to pending matches both unassign and penalize",
			current: StateAssigned,
			target:  StatePending,
			want:    []Event{EventUnassign, EventPenalize},
		},
		{
			name:    "fixing self loop via resume_fix",
			current: StateFixing,
			target:  StateFixing,
			want:    []Event{EventResumeFix},
		},
		{
			name:    "completed to in_progress has no event",
			current: StateCompleted,
			target:  StateInProgress,
			wantErr: true,
		},
		{
			name:    "pending to completed has no event",
			current: StatePending,
			target:  StateCompleted,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.ValidateTarget(tt.current, tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no event permits this transition")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every state a validator accepts must be reachable through the table; walk
// the canonical happy path and check each hop lands where the table says.
func TestValidateEvent_HappyPath(t *testing.T) {
	table := DefaultTable()

	steps := []struct {
		event Event
		want  State
	}{
		{EventAssign, StateAssigned},
		{EventStart, StateInProgress},
		{EventSubmit, StateReview},
		{EventReject, StateRevision},
		{EventBackToWork, StateInProgress},
		{EventSubmit, StateReview},
		{EventFinish, StateCompleted},
	}

	current := StatePending
	for _, step := range steps {
		next, err := table.ValidateEvent(current, step.event, "")
		require.NoError(t, err, "event %s from %s", step.event, current)
		require.Equal(t, step.want, next)
		current = next
	}
}
