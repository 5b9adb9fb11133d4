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
	"fmt"
	"slices"
)

// TransitionError is the legality verdict for a rejected move. It is a
// verdict about states only; role enforcement happens in the Service and
// reports forbidden separately.
type TransitionError struct {
	Current State
	Event   Event // empty in loose mode
	Target  State // empty when no target was requested
	Reason  string
}

func (e *TransitionError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("event %s from state %s: %s", e.Event, e.Current, e.Reason)
	}
	return fmt.Sprintf("transition %s -> %s: %s", e.Current, e.Target, e.Reason)
}

// ValidateEvent decides whether ev may fire from current. If target is
// non-empty it must also equal the table's destination for ev. On success
// the destination state is returned.
func (t *Table) ValidateEvent(current State, ev Event, target State) (State, error) {
	tr, ok := t.Lookup(ev)
	if !ok {
		return "", &TransitionError{
			Current: current,
			Event:   ev,
			Target:  target,
			Reason:  "unknown event",
		}
	}
	if !slices.Contains(tr.From, current) {
		return "", &TransitionError{
			Current: current,
			Event:   ev,
			Target:  target,
			Reason:  "illegal source state for event",
		}
	}
	if target != "" && target != tr.To {
		return "", &TransitionError{
			Current: current,
			Event:   ev,
			Target:  target,
			Reason:  fmt.Sprintf("event yields a different target (%s)", tr.To),
		}
	}
	return tr.To, nil
}

// ValidateTarget is the loose-mode lookup for legacy callers that supply
// only a desired target state: it succeeds when at least one event connects
// current to target, and returns every event that does so the caller can
// apply event-specific side effects. No role check is performed here; a
// caller bypassing named events owns role enforcement itself.
func (t *Table) ValidateTarget(current, target State) ([]Event, error) {
	var matched []Event
	for _, ev := range t.order {
		tr := t.byEvent[ev]
		if tr.To == target && slices.Contains(tr.From, current) {
			matched = append(matched, ev)
		}
	}
	if len(matched) == 0 {
		return nil, &TransitionError{
			Current: current,
			Target:  target,
			Reason:  "no event permits this transition",
		}
	}
	return matched, nil
}
