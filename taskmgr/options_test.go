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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardinalhq/taskrunner/lifecycle"
)

func TestWithClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := NewService(lifecycle.DefaultTable(), &mockTaskDB{}, alwaysAvailable(),
		WithClock(func() time.Time { return fixed }))

	assert.Equal(t, fixed, svc.now())
}

func TestNewService_DefaultClock(t *testing.T) {
	svc := NewService(lifecycle.DefaultTable(), &mockTaskDB{}, alwaysAvailable())

	before := time.Now().Add(-time.Second)
	got := svc.now()
	after := time.Now().Add(time.Second)
	assert.True(t, got.After(before) && got.Before(after))
}
