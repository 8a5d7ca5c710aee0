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

// Status is the lifecycle state of a ticket. The set is closed; every
// mutation goes through the transition table in transitions.go.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCalled    Status = "called"
	StatusConfirmed Status = "confirmed"
	StatusServing   Status = "serving"
	StatusFinished  Status = "finished"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusNoShow || s == StatusCancelled
}

// PriorityClass determines both the admission fee and ordering precedence.
type PriorityClass string

const (
	PriorityVIP      PriorityClass = "vip"
	PriorityFastLane PriorityClass = "fast_lane"
	PriorityNormal   PriorityClass = "normal"
)

// rank maps a priority class to its ordering weight; lower is served sooner.
func (p PriorityClass) rank() int {
	switch p {
	case PriorityVIP:
		return 0
	case PriorityFastLane:
		return 1
	default:
		return 2
	}
}

// Valid reports whether p is one of the known priority classes.
func (p PriorityClass) Valid() bool {
	switch p {
	case PriorityVIP, PriorityFastLane, PriorityNormal:
		return true
	}
	return false
}

// Channel records how a ticket entered the queue. Remote admissions get a
// collision-resistant ticket number suffix; local ones do not.
type Channel string

const (
	ChannelRemote Channel = "remote"
	ChannelLocal  Channel = "local"
)

// Ticket is the central entity of the queue engine. Terminal tickets are
// retained as history, never deleted.
type Ticket struct {
	ID              string
	TenantID        string
	QueueID         string
	CustomerID      string // empty for anonymous walk-ins
	Identity        string // customer ID or phone number used for admission checks
	Number          string
	Priority        PriorityClass
	Status          Status
	Channel         Channel
	PartySize       int
	FeeOwed         int64 // minor currency units
	NoShowCount     int
	RecallCount     int
	ServiceDuration time.Duration
	ArrivedAt       time.Time
	CalledAt        *time.Time
	ConfirmedAt     *time.Time
	FinishedAt      *time.Time
	CancelledAt     *time.Time
}

// Active reports whether the ticket occupies a slot against the queue's
// concurrency ceiling.
func (t *Ticket) Active() bool {
	switch t.Status {
	case StatusWaiting, StatusCalled, StatusConfirmed:
		return true
	}
	return false
}

// Queue is an ordered waiting list scoped to one tenant.
type Queue struct {
	ID               string
	TenantID         string
	Name             string
	Prefix           string // ticket number prefix letter, e.g. "A"
	Status           QueueStatus
	MaxConcurrent    int
	MaxEntriesPerDay int
	FastLaneFee      int64
	VIPFee           int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// QueueStatus is the admission state of a queue.
type QueueStatus string

const (
	QueueActive QueueStatus = "active"
	QueuePaused QueueStatus = "paused"
)
