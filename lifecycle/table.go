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

import "slices"

// Transition is one row of the policy table: an event, the states it may
// fire from, the state it lands in, and the roles allowed to fire it.
type Transition struct {
	Event Event
	From  []State
	To    State
	Roles []Role
}

// Table is an immutable transition policy. Construct one with NewTable and
// inject it where needed; there is no package-level singleton, so tests can
// substitute alternate policies without process-wide state.
type Table struct {
	byEvent map[Event]Transition
	order   []Event
}

// NewTable builds a Table from transition rows. Later rows with a duplicate
// event name overwrite earlier ones.
func NewTable(transitions []Transition) *Table {
	t := &Table{byEvent: make(map[Event]Transition, len(transitions))}
	for _, tr := range transitions {
		if _, ok := t.byEvent[tr.Event]; !ok {
			t.order = append(t.order, tr.Event)
		}
		t.byEvent[tr.Event] = tr
	}
	return t
}

// Lookup returns the transition row for an event.
func (t *Table) Lookup(ev Event) (Transition, bool) {
	tr, ok := t.byEvent[ev]
	return tr, ok
}

// Events returns the declared events in table order.
func (t *Table) Events() []Event {
	return slices.Clone(t.order)
}

// RoleAllowed reports whether role may fire ev under this table.
func (t *Table) RoleAllowed(ev Event, role Role) bool {
	tr, ok := t.byEvent[ev]
	return ok && slices.Contains(tr.Roles, role)
}

// DefaultTable returns the production transition policy.
//
// Two rows deserve a note. reject is legal from completed: a deliberate
// escape hatch so a prematurely approved task can be reopened. resume_fix
// is a self-loop (fixing -> fixing) used to re-stamp bookkeeping when a
// worker confirms they resumed; the validator accepts it like any other row.
func DefaultTable() *Table {
	return NewTable([]Transition{
		{
			Event: EventAssign,
			From:  []State{StatePending, StateAssigned},
			To:    StateAssigned,
			Roles: []Role{RoleAdmin, RoleSystem},
		},
		{
			Event: EventStart,
			From:  []State{StateAssigned, StatePaused},
			To:    StateInProgress,
			Roles: []Role{RoleWorker, RoleAdmin},
		},
		{
			Event: EventSubmit,
			From:  []State{StateInProgress, StateFixing, StateRevision},
			To:    StateReview,
			Roles: []Role{RoleWorker, RoleAdmin},
		},
		{
			Event: EventReject,
			From:  []State{StateReview, StateCompleted},
			To:    StateRevision,
			Roles: []Role{RoleAdmin},
		},
		{
			Event: EventRequestFix,
			From:  []State{StateReview, StateInProgress},
			To:    StateFixing,
			Roles: []Role{RoleAdmin},
		},
		{
			Event: EventResumeFix,
			From:  []State{StateRevision, StateFixing},
			To:    StateFixing,
			Roles: []Role{RoleWorker},
		},
		{
			Event: EventFinish,
			From:  []State{StateReview, StateInProgress, StateFixing, StateRevision},
			To:    StateCompleted,
			Roles: []Role{RoleAdmin, RoleSystem},
		},
		{
			Event: EventPause,
			From:  []State{StateInProgress, StateFixing, StateAssigned},
			To:    StatePaused,
			Roles: []Role{RoleAdmin, RoleWorker},
		},
		{
			Event: EventResume,
			From:  []State{StatePaused},
			To:    StateInProgress,
			Roles: []Role{RoleAdmin, RoleWorker},
		},
		{
			Event: EventUnassign,
			From:  []State{StateAssigned, StateInProgress, StatePaused, StateReview, StateRevision},
			To:    StatePending,
			Roles: []Role{RoleAdmin, RoleSystem},
		},
		{
			Event: EventPenalize,
			From:  []State{StateAssigned, StateInProgress, StateReview, StateRevision},
			To:    StatePending,
			Roles: []Role{RoleSystem},
		},
		{
			Event: EventBackToWork,
			From:  []State{StateRevision},
			To:    StateInProgress,
			Roles: []Role{RoleAdmin, RoleWorker},
		},
	})
}
