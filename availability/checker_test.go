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
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/taskrunner/taskdb"
)

// mockBlockDB is a mock implementation of the BlockDB interface.
type mockBlockDB struct {
	mock.Mock
}

func (m *mockBlockDB) ListBusyBlocks(ctx context.Context, workerID uuid.UUID, windowStart, windowEnd time.Time) ([]taskdb.AvailabilityBlock, error) {
	args := m.Called(ctx, workerID, windowStart, windowEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]taskdb.AvailabilityBlock), args.Error(1)
}

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 1, hour, min, 0, 0, time.UTC)
}

func busyBlock(workerID uuid.UUID, start, end time.Time) taskdb.AvailabilityBlock {
	return taskdb.AvailabilityBlock{
		ID:        uuid.New(),
		WorkerID:  workerID,
		BlockType: taskdb.BlockTypeBusy,
		StartsAt:  start,
		EndsAt:    end,
	}
}

func TestIsAvailable_NoBlocks(t *testing.T) {
	workerID := uuid.New()
	db := &mockBlockDB{}
	db.On("ListBusyBlocks", mock.Anything, workerID, at(10, 0), at(11, 0)).
		Return([]taskdb.AvailabilityBlock{}, nil)

	checker := NewChecker(db)
	got := checker.IsAvailable(context.Background(), workerID, at(10, 30))

	assert.True(t, got.Available)
	assert.Empty(t, got.Conflicts)
	db.AssertExpectations(t)
}

func TestIsAvailable_ConflictReported(t *testing.T) {
	workerID := uuid.New()
	block := busyBlock(workerID, at(10, 0), at(11, 0))

	db := &mockBlockDB{}
	db.On("ListBusyBlocks", mock.Anything, workerID, mock.Anything, mock.Anything).
		Return([]taskdb.AvailabilityBlock{block}, nil)

	checker := NewChecker(db)
	got := checker.IsAvailable(context.Background(), workerID, at(10, 30))

	assert.False(t, got.Available)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, block.ID, got.Conflicts[0].ID)
}

func TestIsAvailable_FailsOpen(t *testing.T) {
	workerID := uuid.New()
	db := &mockBlockDB{}
	db.On("ListBusyBlocks", mock.Anything, workerID, mock.Anything, mock.Anything).
		Return(nil, errors.New("storage unreachable"))

	checker := NewChecker(db)
	got := checker.IsAvailable(context.Background(), workerID, at(10, 30))

	assert.True(t, got.Available, "a storage failure must never block assignment")
	assert.Empty(t, got.Conflicts)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{
			name:   "partial overlap",
			aStart: at(10, 0), aEnd: at(11, 0),
			bStart: at(10, 30), bEnd: at(11, 30),
			want: true,
		},
		{
			name:   "touching endpoints count",
			aStart: at(9, 0), aEnd: at(10, 0),
			bStart: at(10, 0), bEnd: at(11, 0),
			want: true,
		},
		{
			name:   "contained interval",
			aStart: at(10, 0), aEnd: at(12, 0),
			bStart: at(10, 30), bEnd: at(11, 0),
			want: true,
		},
		{
			name:   "disjoint before",
			aStart: at(8, 0), aEnd: at(9, 0),
			bStart: at(10, 0), bEnd: at(11, 0),
			want: false,
		},
		{
			name:   "disjoint after",
			aStart: at(12, 0), aEnd: at(13, 0),
			bStart: at(10, 0), bEnd: at(11, 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			assert.Equal(t, tt.want, got)
			// Overlap is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestIsAvailable_ProbeWindow(t *testing.T) {
	workerID := uuid.New()
	instant := at(10, 30)

	db := &mockBlockDB{}
	db.On("ListBusyBlocks", mock.Anything, workerID,
		instant.Add(-ProbeRadius), instant.Add(ProbeRadius)).
		Return([]taskdb.AvailabilityBlock{}, nil)

	checker := NewChecker(db)
	checker.IsAvailable(context.Background(), workerID, instant)

	db.AssertExpectations(t)
}
