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

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardinalhq/taskrunner/lifecycle"
)

func TestWithDebit(t *testing.T) {
	tests := []struct {
		name   string
		points int32
		want   int32
	}{
		{"positive override", 25, 25},
		{"zero keeps default", 0, DefaultDebit},
		{"negative keeps default", -5, DefaultDebit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&mockSweepDB{}, lifecycle.DefaultTable(), WithDebit(tt.points))
			assert.Equal(t, tt.want, engine.debit)
		})
	}
}
