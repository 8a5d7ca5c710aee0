// Copyright 2026 The Waitline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/waitline/waitline/internal/queue"
)

// QueueRepository implements queue.QueueRepository
type QueueRepository struct {
	db *DB
}

// NewQueueRepository creates a new queue repository
func NewQueueRepository(db *DB) *QueueRepository {
	return &QueueRepository{db: db}
}

const queueColumns = `id, tenant_id, name, prefix, status, max_concurrent,
	max_entries_per_day, fast_lane_fee, vip_fee, created_at, updated_at`

// Create inserts a queue
func (r *QueueRepository) Create(ctx context.Context, q *queue.Queue) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO queues (
			id, tenant_id, name, prefix, status, max_concurrent,
			max_entries_per_day, fast_lane_fee, vip_fee, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		q.ID, q.TenantID, q.Name, q.Prefix, q.Status, q.MaxConcurrent,
		q.MaxEntriesPerDay, q.FastLaneFee, q.VIPFee, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert queue: %w", err)
	}
	return nil
}

// GetByID retrieves a queue scoped to a tenant
func (r *QueueRepository) GetByID(ctx context.Context, tenantID, queueID string) (*queue.Queue, error) {
	var q queue.Queue
	err := r.db.pool.QueryRow(ctx, `
		SELECT `+queueColumns+`
		FROM queues
		WHERE id = $1 AND tenant_id = $2
	`, queueID, tenantID).Scan(
		&q.ID, &q.TenantID, &q.Name, &q.Prefix, &q.Status, &q.MaxConcurrent,
		&q.MaxEntriesPerDay, &q.FastLaneFee, &q.VIPFee, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, queue.ErrQueueNotFound
		}
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}
	return &q, nil
}

// Update persists staff configuration changes
func (r *QueueRepository) Update(ctx context.Context, q *queue.Queue) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE queues SET
			name = $3,
			prefix = $4,
			status = $5,
			max_concurrent = $6,
			max_entries_per_day = $7,
			fast_lane_fee = $8,
			vip_fee = $9,
			updated_at = $10
		WHERE id = $1 AND tenant_id = $2
	`,
		q.ID, q.TenantID, q.Name, q.Prefix, q.Status, q.MaxConcurrent,
		q.MaxEntriesPerDay, q.FastLaneFee, q.VIPFee, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update queue: %w", err)
	}
	if result.RowsAffected() == 0 {
		return queue.ErrQueueNotFound
	}
	return nil
}

// ListByTenant lists a tenant's queues
func (r *QueueRepository) ListByTenant(ctx context.Context, tenantID string) ([]*queue.Queue, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+queueColumns+`
		FROM queues
		WHERE tenant_id = $1
		ORDER BY created_at ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queues: %w", err)
	}
	defer rows.Close()

	var queues []*queue.Queue
	for rows.Next() {
		var q queue.Queue
		if err := rows.Scan(
			&q.ID, &q.TenantID, &q.Name, &q.Prefix, &q.Status, &q.MaxConcurrent,
			&q.MaxEntriesPerDay, &q.FastLaneFee, &q.VIPFee, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan queue: %w", err)
		}
		queues = append(queues, &q)
	}
	return queues, rows.Err()
}
