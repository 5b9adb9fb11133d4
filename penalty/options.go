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

package penalty

type Option interface {
	apply(e *Engine)
}

type debitOption struct {
	points int32
}

func (d *debitOption) apply(e *Engine) {
	if d.points > 0 {
		e.debit = d.points
	}
}

// WithDebit overrides the reputation cost of one missed deadline. Values
// below 1 are ignored and the default is kept.
func WithDebit(points int32) Option {
	return &debitOption{points: points}
}
