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
	"github.com/waitline/waitline/internal/customer"
)

// CustomerRepository implements customer.Repository
type CustomerRepository struct {
	db *DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO customers (
			id, tenant_id, full_name, phone, is_vip, visits,
			fast_lane_uses, vip_uses, no_shows, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		c.ID, c.TenantID, c.FullName, c.Phone, c.IsVIP, c.Visits,
		c.FastLaneUses, c.VIPUses, c.NoShows, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer scoped to a tenant
func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, id string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, full_name, phone, is_vip, visits,
			fast_lane_uses, vip_uses, no_shows, created_at, updated_at
		FROM customers
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(
		&c.ID, &c.TenantID, &c.FullName, &c.Phone, &c.IsVIP, &c.Visits,
		&c.FastLaneUses, &c.VIPUses, &c.NoShows, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// ApplyVisit atomically increments the visit counter plus the counter
// matching the finished ticket's priority class.
func (r *CustomerRepository) ApplyVisit(ctx context.Context, tenantID, id string, kind customer.VisitKind) error {
	query := `
		UPDATE customers SET
			visits = visits + 1,
			fast_lane_uses = fast_lane_uses + CASE WHEN $3 = 'fast_lane' THEN 1 ELSE 0 END,
			vip_uses = vip_uses + CASE WHEN $3 = 'vip' THEN 1 ELSE 0 END,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`
	result, err := r.db.pool.Exec(ctx, query, id, tenantID, string(kind))
	if err != nil {
		return fmt.Errorf("failed to apply visit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}

// RecordNoShow atomically increments the no-show counter.
func (r *CustomerRepository) RecordNoShow(ctx context.Context, tenantID, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE customers SET no_shows = no_shows + 1, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to record no-show: %w", err)
	}
	if result.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}
