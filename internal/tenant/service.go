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

package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/waitline/waitline/internal/audit"
	"github.com/waitline/waitline/internal/queue"
)

// Onboarding defaults for a venue's first queue.
const (
	defaultMaxConcurrent    = 50
	defaultMaxEntriesPerDay = 3
	defaultQueuePrefix      = "A"
)

// Service provides venue (tenant) management business logic
type Service struct {
	repo        Repository
	queues      queue.QueueRepository
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, queues queue.QueueRepository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		queues:      queues,
		auditLogger: auditLogger,
	}
}

// CreateTenant onboards a new venue together with its default queue.
func (s *Service) CreateTenant(ctx context.Context, name, creatorID string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}

	if existing, err := s.repo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrTenantExists
	} else if err != nil && !errors.Is(err, ErrTenantNotFound) {
		return nil, fmt.Errorf("failed to check tenant name: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant id: %w", err)
	}

	now := time.Now()
	tenant := &Tenant{
		ID:        id.String(),
		Name:      name,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	queueID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate queue id: %w", err)
	}
	q := &queue.Queue{
		ID:               queueID.String(),
		TenantID:         tenant.ID,
		Name:             "Main",
		Prefix:           defaultQueuePrefix,
		Status:           queue.QueueActive,
		MaxConcurrent:    defaultMaxConcurrent,
		MaxEntriesPerDay: defaultMaxEntriesPerDay,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.queues.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create default queue: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: tenant.ID,
		ActorID:  creatorID,
		Resource: tenant.Name,
	})

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTenants lists tenants with pagination
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateQueue applies staff configuration changes to a queue: pausing,
// capacity ceilings, anti-abuse limits and the fee schedule.
func (s *Service) UpdateQueue(ctx context.Context, q *queue.Queue, actorID string) error {
	if q.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1")
	}

	q.UpdatedAt = time.Now()
	if err := s.queues.Update(ctx, q); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeQueueUpdated,
		TenantID: q.TenantID,
		ActorID:  actorID,
		Resource: q.ID,
		Metadata: map[string]any{
			"status":         string(q.Status),
			"max_concurrent": q.MaxConcurrent,
		},
	})
	return nil
}
