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
	"errors"
	"time"
)

// Domain errors
var ErrCustomerNotFound = errors.New("customer not found")

// Customer is an identity owning tickets across time. Aggregate counters
// are mutated only by lifecycle side effects on finished and no-show
// transitions.
type Customer struct {
	ID           string
	TenantID     string
	FullName     string
	Phone        string
	IsVIP        bool // loyalty flag; discounts priority fees
	Visits       int
	FastLaneUses int
	VIPUses      int
	NoShows      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VisitKind classifies a finished visit for aggregate bookkeeping.
type VisitKind string

const (
	VisitNormal   VisitKind = "normal"
	VisitFastLane VisitKind = "fast_lane"
	VisitVIP      VisitKind = "vip"
)

// Repository defines the interface for customer storage. The increment
// operations are atomic single-row updates.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, tenantID, id string) (*Customer, error)
	ApplyVisit(ctx context.Context, tenantID, id string, kind VisitKind) error
	RecordNoShow(ctx context.Context, tenantID, id string) error
}
