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

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/taskrunner/availability"
	"github.com/cardinalhq/taskrunner/internal/dbopen"
	"github.com/cardinalhq/taskrunner/internal/logctx"
	"github.com/cardinalhq/taskrunner/lifecycle"
	"github.com/cardinalhq/taskrunner/taskdb"
	"github.com/cardinalhq/taskrunner/taskmgr"
)

var applyFlags struct {
	task     string
	event    string
	role     string
	actor    string
	assignee string
	target   string
	force    bool
}

func init() {
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a lifecycle event to a task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd.Context())
		},
	}
	applyCmd.Flags().StringVar(&applyFlags.task, "task", "", "task ID (required)")
	applyCmd.Flags().StringVar(&applyFlags.event, "event", "", "lifecycle event to fire (required)")
	applyCmd.Flags().StringVar(&applyFlags.role, "role", string(lifecycle.RoleAdmin), "actor role")
	applyCmd.Flags().StringVar(&applyFlags.actor, "actor", "", "actor ID")
	applyCmd.Flags().StringVar(&applyFlags.assignee, "assignee", "", "worker to assign (assign only)")
	applyCmd.Flags().StringVar(&applyFlags.target, "target", "", "expected destination state")
	applyCmd.Flags().BoolVar(&applyFlags.force, "force", false, "accept a reported availability conflict")
	_ = applyCmd.MarkFlagRequired("task")
	_ = applyCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(applyCmd)
}

func runApply(ctx context.Context) error {
	ll := slog.Default()
	ctx = logctx.WithLogger(ctx, ll)

	req, err := buildApplyRequest()
	if err != nil {
		return err
	}

	pool, err := dbopen.ConnectTaskDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to taskdb: %w", err)
	}
	store := taskdb.NewStore(pool)
	defer store.Close()

	svc := taskmgr.NewService(lifecycle.DefaultTable(), store, availability.NewChecker(store))

	result, err := svc.ApplyEvent(ctx, req)
	if err != nil {
		return err
	}
	if !result.OK {
		for _, b := range result.Conflicts {
			ll.Warn("conflicting block",
				slog.String("blockID", b.ID.String()),
				slog.Time("startsAt", b.StartsAt),
				slog.Time("endsAt", b.EndsAt))
		}
		return fmt.Errorf("rejected (%s): %s", result.Kind, result.Detail)
	}
	ll.Info("event applied",
		slog.String("taskID", req.TaskID.String()),
		slog.String("event", string(req.Event)),
		slog.String("newState", string(result.NewState)))
	return nil
}

func buildApplyRequest() (taskmgr.ApplyRequest, error) {
	var req taskmgr.ApplyRequest
	var err error

	if req.TaskID, err = uuid.Parse(applyFlags.task); err != nil {
		return req, fmt.Errorf("invalid task ID: %w", err)
	}
	if req.Event, err = lifecycle.ParseEvent(applyFlags.event); err != nil {
		return req, err
	}
	if req.ActorRole, err = lifecycle.ParseRole(applyFlags.role); err != nil {
		return req, err
	}
	if applyFlags.actor != "" {
		if req.ActorID, err = uuid.Parse(applyFlags.actor); err != nil {
			return req, fmt.Errorf("invalid actor ID: %w", err)
		}
	}
	if applyFlags.assignee != "" {
		id, perr := uuid.Parse(applyFlags.assignee)
		if perr != nil {
			return req, fmt.Errorf("invalid assignee ID: %w", perr)
		}
		req.AssigneeID = &id
	}
	if applyFlags.target != "" {
		if req.TargetState, err = lifecycle.ParseState(applyFlags.target); err != nil {
			return req, err
		}
	}
	req.ForceOverlap = applyFlags.force
	return req, nil
}
