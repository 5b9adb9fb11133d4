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
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	penaltiesApplied metric.Int64Counter
	workersLocked    metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/taskrunner/penalty")

	var err error

	penaltiesApplied, err = meter.Int64Counter(
		"taskrunner.penalty.applied",
		metric.WithDescription("Number of overdue tasks penalized and requeued"),
	)
	if err != nil {
		log.Fatalf("failed to create penalty.applied counter: %v", err)
	}

	workersLocked, err = meter.Int64Counter(
		"taskrunner.penalty.workers_locked",
		metric.WithDescription("Number of workers locked out after their reputation was exhausted"),
	)
	if err != nil {
		log.Fatalf("failed to create penalty.workers_locked counter: %v", err)
	}
}

func recordPenaltyApplied() {
	penaltiesApplied.Add(context.Background(), 1)
}

func recordWorkerLocked() {
	workersLocked.Add(context.Background(), 1)
}
