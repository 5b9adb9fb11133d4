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
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cardinalhq/taskrunner/lifecycle"
)

// GetWorker fetches one worker by id, returning ErrNotFound if it does not exist.
func (q *Queries) GetWorker(ctx context.Context, id uuid.UUID) (Worker, error) {
	var w Worker
	err := q.db.QueryRow(ctx,
		`SELECT id, role, reputation, org_id FROM workers WHERE id = $1`, id).
		Scan(&w.ID, &w.Role, &w.Reputation, &w.OrgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Worker{}, ErrNotFound
	}
	return w, err
}

type InsertWorkerParams struct {
	ID         uuid.UUID
	Role       lifecycle.Role
	Reputation int32
	OrgID      *uuid.UUID
}

// InsertWorker creates a worker row.
func (q *Queries) InsertWorker(ctx context.Context, params InsertWorkerParams) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO workers (id, role, reputation, org_id) VALUES ($1, $2, $3, $4)`,
		params.ID, params.Role, params.Reputation, params.OrgID)
	return err
}

type DebitWorkerRow struct {
	Reputation int32
	Role       lifecycle.Role
}

// DebitWorkerReputation subtracts debit from the worker's reputation and
// returns the post-debit row. The subtraction happens in SQL against the
// current committed value under the row lock, so concurrent debits
// accumulate instead of overwriting each other.
func (q *Queries) DebitWorkerReputation(ctx context.Context, id uuid.UUID, debit int32) (DebitWorkerRow, error) {
	var r DebitWorkerRow
	err := q.db.QueryRow(ctx,
		`UPDATE workers SET reputation = reputation - $2 WHERE id = $1 RETURNING reputation, role`,
		id, debit).Scan(&r.Reputation, &r.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return DebitWorkerRow{}, ErrNotFound
	}
	return r, err
}

// SetWorkerRole updates only the worker's role.
func (q *Queries) SetWorkerRole(ctx context.Context, id uuid.UUID, role lifecycle.Role) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE workers SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
