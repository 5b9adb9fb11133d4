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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/taskrunner/config"
	"github.com/cardinalhq/taskrunner/internal/dbopen"
	"github.com/cardinalhq/taskrunner/internal/healthcheck"
	"github.com/cardinalhq/taskrunner/internal/logctx"
	"github.com/cardinalhq/taskrunner/lifecycle"
	"github.com/cardinalhq/taskrunner/penalty"
	"github.com/cardinalhq/taskrunner/taskdb"
)

var (
	sweepOnce     bool
	sweepInterval time.Duration
)

func init() {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Penalize overdue tasks and requeue them into the pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd.Context(), sweepOnce)
		},
	}
	sweepCmd.Flags().BoolVar(&sweepOnce, "once", false, "run a single sweep and exit")
	sweepCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "override the configured time between sweeps")
	rootCmd.AddCommand(sweepCmd)
}

// effectiveInterval prefers a positive flag override over the configured
// value.
func effectiveInterval(configured, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return configured
}

func runSweep(ctx context.Context, once bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ll := slog.Default()
	ctx = logctx.WithLogger(ctx, ll)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := dbopen.ConnectTaskDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to taskdb: %w", err)
	}
	store := taskdb.NewStore(pool)
	defer store.Close()

	engine := penalty.NewEngine(store, lifecycle.DefaultTable(),
		penalty.WithDebit(cfg.Sweep.Debit))

	if once {
		return sweepOnceNow(ctx, engine)
	}

	health := healthcheck.NewServer(healthcheck.GetConfigFromEnv())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return health.Start(gctx)
	})
	g.Go(func() error {
		health.SetStatus(healthcheck.StatusHealthy)
		health.SetReady(true)
		defer health.SetReady(false)

		ticker := time.NewTicker(effectiveInterval(cfg.Sweep.Interval, sweepInterval))
		defer ticker.Stop()

		for {
			if err := sweepOnceNow(gctx, engine); err != nil {
				// A failed sweep is retried on the next tick; the DB may
				// just be briefly unreachable.
				ll.Error("sweep failed", slog.Any("error", err))
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func sweepOnceNow(ctx context.Context, engine *penalty.Engine) error {
	ll := logctx.FromContext(ctx)

	result, err := engine.RunSweep(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, p := range result.Processed {
		ll.Info("penalized worker",
			slog.String("workerID", p.WorkerID.String()),
			slog.String("taskID", p.TaskID.String()),
			slog.Int("newReputation", int(p.NewReputation)),
			slog.Bool("locked", p.Locked))
	}
	ll.Info("sweep complete", slog.Int("processed", len(result.Processed)))
	return nil
}
