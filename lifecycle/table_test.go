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

func TestDefaultTable_AllEventsDeclared(t *testing.T) {
	table := DefaultTable()

	want := []Event{
		EventAssign, EventStart, EventSubmit, EventReject, EventRequestFix,
		EventResumeFix, EventFinish, EventPause, EventResume, EventUnassign,
		EventPenalize, EventBackToWork,
	}
	assert.ElementsMatch(t, want, table.Events())
}

func TestDefaultTable_Targets(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		event Event
		to    State
	}{
		{EventAssign, StateAssigned},
		{EventStart, StateInProgress},
		{EventSubmit, StateReview},
		{EventReject, StateRevision},
		{EventRequestFix, StateFixing},
		{EventResumeFix, StateFixing},
		{EventFinish, StateCompleted},
		{EventPause, StatePaused},
		{EventResume, StateInProgress},
		{EventUnassign, StatePending},
		{EventPenalize, StatePending},
		{EventBackToWork, StateInProgress},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			tr, ok := table.Lookup(tt.event)
			require.True(t, ok)
			assert.Equal(t, tt.to, tr.To)
		})
	}
}

func TestDefaultTable_RoleAllowed(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		event   Event
		role    Role
		allowed bool
	}{
		{EventAssign, RoleAdmin, true},
		{EventAssign, RoleSystem, true},
		{EventAssign, RoleWorker, false},
		{EventStart, RoleWorker, true},
		{EventStart, RoleSystem, false},
		{EventReject, RoleAdmin, true},
		{EventReject, RoleWorker, false},
		{EventResumeFix, RoleWorker, true},
		{EventResumeFix, RoleAdmin, false},
		{EventPenalize, RoleSystem, true},
		{EventPenalize, RoleAdmin, false},
		{EventPenalize, RoleLocked, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.event)+"/"+string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.allowed, table.RoleAllowed(tt.event, tt.role))
		})
	}
}

func TestDefaultTable_LockedRoleNeverPermitted(t *testing.T) {
	table := DefaultTable()

	for _, ev := range table.Events() {
		assert.False(t, table.RoleAllowed(ev, RoleLocked),
			"locked role must not be permitted to fire %s", ev)
	}
}

func TestNewTable_Injection(t *testing.T) {
	// A two-state policy unrelated to the production table.
	table := NewTable([]Transition{
		{Event: "flip", From: []State{StatePending}, To: StateCompleted, Roles: []Role{RoleAdmin}},
	})

	target, err := table.ValidateEvent(StatePending, "flip", "")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, target)

	_, err = table.ValidateEvent(StatePending, EventAssign, "")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateReview.Terminal())
}

func TestParseState(t *testing.T) {
	s, err := ParseState("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, s)

	_, err = ParseState("shipped")
	assert.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent("back_to_work")
	require.NoError(t, err)
	assert.Equal(t, EventBackToWork, e)

	_, err = ParseEvent("escalate")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}
