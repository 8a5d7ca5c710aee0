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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/waitline/waitline/internal/queue"
)

// Service provides customer directory logic and consumes the queue
// engine's aggregate side effects. It satisfies queue.CustomerDirectory.
type Service struct {
	repo Repository
}

// NewService creates a new customer service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new customer in the tenant.
func (s *Service) Register(ctx context.Context, tenantID, fullName, phone string) (*Customer, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate customer id: %w", err)
	}

	now := time.Now()
	c := &Customer{
		ID:        id.String(),
		TenantID:  tenantID,
		FullName:  fullName,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

// Get retrieves a customer scoped to a tenant.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Customer, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// IsLoyalty reports whether the customer carries the loyalty flag.
func (s *Service) IsLoyalty(ctx context.Context, tenantID, customerID string) (bool, error) {
	c, err := s.repo.GetByID(ctx, tenantID, customerID)
	if err != nil {
		return false, err
	}
	return c.IsVIP, nil
}

// ApplyVisit increments the customer's visit counter, plus the fast-lane
// or VIP counter matching the finished ticket's priority class.
func (s *Service) ApplyVisit(ctx context.Context, tenantID, customerID string, class queue.PriorityClass) error {
	kind := VisitNormal
	switch class {
	case queue.PriorityFastLane:
		kind = VisitFastLane
	case queue.PriorityVIP:
		kind = VisitVIP
	}
	return s.repo.ApplyVisit(ctx, tenantID, customerID, kind)
}

// RecordNoShow increments the customer's no-show counter.
func (s *Service) RecordNoShow(ctx context.Context, tenantID, customerID string) error {
	return s.repo.RecordNoShow(ctx, tenantID, customerID)
}
