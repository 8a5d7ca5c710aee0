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

package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/waitline/waitline/internal/audit"
	"github.com/waitline/waitline/internal/auth"
)

// Service provides staff account management and authentication.
type Service struct {
	repo        Repository
	hasher      *PasswordHasher
	tokens      *auth.TokenManager
	auditLogger audit.Logger
}

// NewService creates a new staff service
func NewService(repo Repository, hasher *PasswordHasher, tokens *auth.TokenManager, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		auditLogger: auditLogger,
	}
}

// Create registers a staff member for a venue.
func (s *Service) Create(ctx context.Context, tenantID, email, fullName, password, role string) (*Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if role != auth.RoleStaff && role != auth.RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	if _, err := s.repo.GetByEmail(ctx, tenantID, email); err == nil {
		return nil, ErrStaffExists
	} else if !errors.Is(err, ErrStaffNotFound) {
		return nil, fmt.Errorf("failed to check staff email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff id: %w", err)
	}

	now := time.Now()
	m := &Member{
		ID:           id.String(),
		TenantID:     tenantID,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return m, nil
}

// Authenticate verifies credentials and issues a bearer token.
func (s *Service) Authenticate(ctx context.Context, tenantID, email, password string) (string, *Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	m, err := s.repo.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, ErrStaffNotFound) {
			s.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeStaffLoginFailed,
				TenantID: tenantID,
				Metadata: map[string]any{"email": email, "reason": "unknown account"},
			})
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	ok, err := s.hasher.Verify(password, m.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeStaffLoginFailed,
			TenantID: tenantID,
			ActorID:  m.ID,
			Metadata: map[string]any{"reason": "wrong password"},
		})
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(m.ID, m.TenantID, m.Role)
	if err != nil {
		return "", nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeStaffLoginOK,
		TenantID: m.TenantID,
		ActorID:  m.ID,
	})
	return token, m, nil
}
