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

package queue

import "time"

// Event kinds. CREATED is recorded on admission; the rest mirror lifecycle
// actions.
const (
	EventCreated   = "created"
	EventCalled    = "called"
	EventConfirmed = "confirmed"
	EventSkipped   = "skipped"
	EventRecalled  = "recalled"
	EventNoShow    = "no_show"
	EventFinished  = "finished"
	EventCancelled = "cancelled"
)

// ActorKind identifies who performed an action.
type ActorKind string

const (
	ActorCustomer ActorKind = "customer"
	ActorStaff    ActorKind = "staff"
	ActorAdmin    ActorKind = "admin"
)

// Actor is the authenticated identity behind a lifecycle action.
type Actor struct {
	Kind ActorKind
	ID   string
}

// Event is an immutable audit record of one lifecycle transition. Appended
// exactly once per transition, never mutated or deleted.
type Event struct {
	ID        string
	TicketID  string
	TenantID  string
	Kind      string
	ActorKind ActorKind
	ActorID   string
	Metadata  map[string]any
	CreatedAt time.Time
}
