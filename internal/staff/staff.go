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
	"time"
)

// Domain errors
var (
	ErrStaffNotFound      = errors.New("staff member not found")
	ErrStaffExists        = errors.New("staff member already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Member is a staff account scoped to one venue.
type Member struct {
	ID           string
	TenantID     string
	Email        string
	FullName     string
	Role         string // staff or admin
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository defines the interface for staff storage
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, tenantID, id string) (*Member, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*Member, error)
}
