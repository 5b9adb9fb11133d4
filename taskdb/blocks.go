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
	"context"
	"time"

	"github.com/google/uuid"
)

// ListBusyBlocks returns the worker's busy blocks intersecting the window.
// Endpoints count: a block ending exactly at windowStart still conflicts.
func (q *Queries) ListBusyBlocks(ctx context.Context, workerID uuid.UUID, windowStart, windowEnd time.Time) ([]AvailabilityBlock, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, worker_id, block_type, starts_at, ends_at
		FROM availability_blocks
		WHERE worker_id = $1
		  AND block_type = $2
		  AND starts_at <= $4
		  AND ends_at >= $3
		ORDER BY starts_at`,
		workerID, BlockTypeBusy, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []AvailabilityBlock
	for rows.Next() {
		var b AvailabilityBlock
		if err := rows.Scan(&b.ID, &b.WorkerID, &b.BlockType, &b.StartsAt, &b.EndsAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
