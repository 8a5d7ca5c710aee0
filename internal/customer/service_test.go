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

package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitline/waitline/internal/queue"
)

type fakeRepo struct {
	customers map[string]*Customer
	visits    []VisitKind
	noShows   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{customers: make(map[string]*Customer)}
}

func (r *fakeRepo) Create(ctx context.Context, c *Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, tenantID, id string) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func (r *fakeRepo) ApplyVisit(ctx context.Context, tenantID, customerID string, kind VisitKind) error {
	r.visits = append(r.visits, kind)
	return nil
}

func (r *fakeRepo) RecordNoShow(ctx context.Context, tenantID, customerID string) error {
	r.noShows++
	return nil
}

// TestPurpose: Validates customer registration input requirements.
// Scope: Unit Test
// Expected: A customer registers with tenant and phone; missing phone is rejected.
// Test Case ID: CUS-01
func TestService_Register(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	c, err := svc.Register(ctx, "tenant-1", "Ana Souza", "+5511999990001")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "tenant-1", c.TenantID)

	_, err = svc.Register(ctx, "tenant-1", "No Phone", "")
	assert.Error(t, err)
}

// TestPurpose: Validates the mapping from ticket priority classes to visit counters.
// Scope: Unit Test
// Expected: Finished normal, fast-lane and VIP tickets record their respective visit kinds.
// Test Case ID: CUS-02
func TestService_ApplyVisit_ClassMapping(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ApplyVisit(ctx, "tenant-1", "cust-1", queue.PriorityNormal))
	require.NoError(t, svc.ApplyVisit(ctx, "tenant-1", "cust-1", queue.PriorityFastLane))
	require.NoError(t, svc.ApplyVisit(ctx, "tenant-1", "cust-1", queue.PriorityVIP))

	assert.Equal(t, []VisitKind{VisitNormal, VisitFastLane, VisitVIP}, repo.visits)
}

// TestPurpose: Validates the loyalty lookup used for fee discounts.
// Scope: Unit Test
// Expected: IsLoyalty reflects the stored flag and reports not-found for unknown customers.
// Test Case ID: CUS-03
func TestService_IsLoyalty(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	repo.customers["cust-1"] = &Customer{ID: "cust-1", TenantID: "tenant-1", IsVIP: true}

	loyal, err := svc.IsLoyalty(ctx, "tenant-1", "cust-1")
	require.NoError(t, err)
	assert.True(t, loyal)

	_, err = svc.IsLoyalty(ctx, "tenant-1", "cust-unknown")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
