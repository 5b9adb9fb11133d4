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

package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/taskrunner/internal/logctx"
	"github.com/cardinalhq/taskrunner/taskdb"
)

// ProbeRadius is half the probe window: an assignment at instant t is
// checked against busy blocks within [t-ProbeRadius, t+ProbeRadius].
const ProbeRadius = 30 * time.Minute

// BlockDB defines the database operations needed by the checker.
type BlockDB interface {
	ListBusyBlocks(ctx context.Context, workerID uuid.UUID, windowStart, windowEnd time.Time) ([]taskdb.AvailabilityBlock, error)
}

// Ensure taskdb.Store satisfies BlockDB interface.
var _ BlockDB = (*taskdb.Store)(nil)

// Availability is the advisory verdict for one worker at one instant.
// Conflicts is populated for display only; it never blocks assignment by
// itself.
type Availability struct {
	Available bool
	Conflicts []taskdb.AvailabilityBlock
}

// Checker answers whether a worker is free around a given instant.
type Checker struct {
	db BlockDB
}

func NewChecker(db BlockDB) *Checker {
	return &Checker{db: db}
}

// IsAvailable probes the worker's busy blocks around instant. It fails
// open: a storage error is logged and reported as available, because
// availability is an advisory signal and a dependency failure must never
// itself prevent work from being assigned.
func (c *Checker) IsAvailable(ctx context.Context, workerID uuid.UUID, instant time.Time) Availability {
	windowStart := instant.Add(-ProbeRadius)
	windowEnd := instant.Add(ProbeRadius)

	blocks, err := c.db.ListBusyBlocks(ctx, workerID, windowStart, windowEnd)
	if err != nil {
		ll := logctx.FromContext(ctx)
		ll.Error("availability check failed, treating worker as available",
			slog.String("workerID", workerID.String()),
			slog.Any("error", err))
		return Availability{Available: true}
	}

	var conflicts []taskdb.AvailabilityBlock
	for _, b := range blocks {
		if Overlaps(b.StartsAt, b.EndsAt, windowStart, windowEnd) {
			conflicts = append(conflicts, b)
		}
	}
	return Availability{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}
}

// Overlaps reports whether [aStart,aEnd] and [bStart,bEnd] intersect.
// Touching endpoints count as overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
