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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, time.Hour, cfg.Sweep.Interval)
	require.Equal(t, int32(10), cfg.Sweep.Debit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TASKRUNNER_SWEEP_INTERVAL", "15m")
	t.Setenv("TASKRUNNER_SWEEP_DEBIT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	require.Equal(t, int32(25), cfg.Sweep.Debit)
}
