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

package taskmgr

import "time"

type Option interface {
	apply(s *Service)
}

type clockOption struct {
	now func() time.Time
}

func (c *clockOption) apply(s *Service) {
	s.now = c.now
}

// WithClock overrides the service's time source. Tests use this to make
// timer bookkeeping deterministic.
func WithClock(now func() time.Time) Option {
	return &clockOption{now: now}
}
