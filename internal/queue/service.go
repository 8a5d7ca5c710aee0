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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/waitline/waitline/internal/audit"
	"github.com/waitline/waitline/internal/observability/logger"
)

// CustomerDirectory is the queue engine's view of the customer aggregate.
// Aggregate updates are consumed here after the ticket transition commits,
// keeping the two concerns separable.
type CustomerDirectory interface {
	IsLoyalty(ctx context.Context, tenantID, customerID string) (bool, error)
	ApplyVisit(ctx context.Context, tenantID, customerID string, class PriorityClass) error
	RecordNoShow(ctx context.Context, tenantID, customerID string) error
}

// Notification is the payload emitted to observers after a successful
// transition. The engine does not know how many observers exist.
type Notification struct {
	TicketID  string    `json:"ticket_id"`
	QueueID   string    `json:"queue_id"`
	TenantID  string    `json:"tenant_id"`
	NewStatus Status    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier fans a notification out to interested observers. Delivery is
// fire-and-forget; failures never affect the transition that produced it.
type Notifier interface {
	TicketTransitioned(ctx context.Context, n Notification)
}

// Config tunes the queue engine.
type Config struct {
	EnforceEntryCap  bool
	AllocateAttempts int
	BackoffStep      time.Duration
	SampleSize       int
	DefaultEstimate  int
}

// Service implements the ticket lifecycle: admission, staff actions and
// position queries. Every mutation is a short-lived unit of work; ordering
// and ETA values are computed on demand, never maintained incrementally.
type Service struct {
	queues      QueueRepository
	tickets     TicketRepository
	customers   CustomerDirectory
	estimator   *Estimator
	notifier    Notifier
	auditLogger audit.Logger
	metrics     *Metrics

	enforceEntryCap  bool
	allocateAttempts int
	backoffStep      time.Duration

	now func() time.Time
}

// NewService creates the queue engine service.
func NewService(
	queues QueueRepository,
	tickets TicketRepository,
	customers CustomerDirectory,
	notifier Notifier,
	auditLogger audit.Logger,
	metrics *Metrics,
	cfg Config,
) *Service {
	backoff := cfg.BackoffStep
	if backoff <= 0 {
		backoff = DefaultBackoffStep
	}
	return &Service{
		queues:           queues,
		tickets:          tickets,
		customers:        customers,
		estimator:        NewEstimator(tickets, cfg.SampleSize, cfg.DefaultEstimate),
		notifier:         notifier,
		auditLogger:      auditLogger,
		metrics:          metrics,
		enforceEntryCap:  cfg.EnforceEntryCap,
		allocateAttempts: cfg.AllocateAttempts,
		backoffStep:      backoff,
		now:              time.Now,
	}
}

// AdmitInput carries a join-the-queue request.
type AdmitInput struct {
	TenantID   string
	QueueID    string
	CustomerID string // set for authenticated app customers
	Phone      string // identity for staff-entered walk-ins
	Priority   PriorityClass
	PartySize  int
	Channel    Channel
	Actor      Actor
}

// identity returns the admission identity: customer ID when present,
// otherwise the phone number.
func (in *AdmitInput) identity() string {
	if in.CustomerID != "" {
		return in.CustomerID
	}
	return in.Phone
}

// Admit runs the full admission flow: guard checks, number allocation, fee
// computation and ticket creation in WAITING, returning the created ticket
// with its immediate position feedback already computable by the caller.
func (s *Service) Admit(ctx context.Context, in AdmitInput) (*Ticket, error) {
	if in.PartySize < 1 {
		return nil, ErrInvalidParty
	}
	if !in.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	identity := in.identity()
	if identity == "" {
		return nil, ErrMissingIdentity
	}

	q, err := s.queues.GetByID(ctx, in.TenantID, in.QueueID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.checkAdmission(ctx, q, identity, now); err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAdmissionDenied,
			TenantID: in.TenantID,
			ActorID:  in.Actor.ID,
			Resource: in.QueueID,
			Metadata: map[string]any{"reason": err.Error()},
		})
		return nil, err
	}

	loyalty := false
	if in.CustomerID != "" {
		loyalty, err = s.customers.IsLoyalty(ctx, in.TenantID, in.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("loyalty lookup: %w", err)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket id: %w", err)
	}

	t := &Ticket{
		ID:         id.String(),
		TenantID:   in.TenantID,
		QueueID:    in.QueueID,
		CustomerID: in.CustomerID,
		Identity:   identity,
		Priority:   in.Priority,
		Status:     StatusWaiting,
		Channel:    in.Channel,
		PartySize:  in.PartySize,
		FeeOwed:    Fee(q, in.Priority, loyalty),
		ArrivedAt:  now,
	}
	ev := s.newEvent(t, EventCreated, in.Actor, map[string]any{
		"priority":   string(in.Priority),
		"party_size": in.PartySize,
	})

	if err := s.createWithRetry(ctx, q, t, ev); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTicketCreated,
		TenantID: t.TenantID,
		ActorID:  in.Actor.ID,
		Resource: t.ID,
		Metadata: map[string]any{"number": t.Number, "priority": string(t.Priority)},
	})
	s.metrics.recordAdmission(ctx, t.Priority)
	s.notify(t)

	return t, nil
}

// Call marks a waiting ticket as called and stamps the call time.
func (s *Service) Call(ctx context.Context, tenantID, ticketID string, actor Actor) (*Ticket, error) {
	return s.transition(ctx, tenantID, ticketID, ActionCall, actor, EventCalled, audit.TypeTicketCalled, nil, func(t *Ticket, now time.Time) {
		t.Status = StatusCalled
		t.CalledAt = &now
	})
}

// ConfirmPresence marks a called ticket as confirmed (table or seat ready).
func (s *Service) ConfirmPresence(ctx context.Context, tenantID, ticketID string, actor Actor) (*Ticket, error) {
	return s.transition(ctx, tenantID, ticketID, ActionConfirm, actor, EventConfirmed, audit.TypeTicketConfirmed, nil, func(t *Ticket, now time.Time) {
		t.Status = StatusConfirmed
		t.ConfirmedAt = &now
	})
}

// Skip returns a called or confirmed ticket to the waiting set. Clearing
// the call time is intentional: ordering keys on arrival time, so the
// ticket re-enters at its original FIFO rank, not at the back.
func (s *Service) Skip(ctx context.Context, tenantID, ticketID string, actor Actor) (*Ticket, error) {
	return s.transition(ctx, tenantID, ticketID, ActionSkip, actor, EventSkipped, audit.TypeTicketSkipped, nil, func(t *Ticket, now time.Time) {
		t.Status = StatusWaiting
		t.CalledAt = nil
		t.ConfirmedAt = nil
	})
}

// Recall re-announces a called or confirmed ticket without changing its
// status.
func (s *Service) Recall(ctx context.Context, tenantID, ticketID string, actor Actor) (*Ticket, error) {
	return s.transition(ctx, tenantID, ticketID, ActionRecall, actor, EventRecalled, audit.TypeTicketRecalled, nil, func(t *Ticket, now time.Time) {
		t.RecallCount++
	})
}

// MarkNoShow records that a called or confirmed customer never presented
// themselves, incrementing both the ticket's and the customer's no-show
// counters.
func (s *Service) MarkNoShow(ctx context.Context, tenantID, ticketID string, actor Actor) (*Ticket, error) {
	t, err := s.transition(ctx, tenantID, ticketID, ActionNoShow, actor, EventNoShow, audit.TypeTicketNoShow, nil, func(t *Ticket, now time.Time) {
		t.Status = StatusNoShow
		t.NoShowCount++
	})
	if err != nil {
		return nil, err
	}

	if t.CustomerID != "" {
		if err := s.customers.RecordNoShow(ctx, t.TenantID, t.CustomerID); err != nil {
			slog.ErrorContext(ctx, "failed to record customer no-show",
				logger.TicketID(t.ID),
				logger.CustomerID(t.CustomerID),
				logger.Error(err),
			)
		}
	}
	return t, nil
}

// Finish completes a ticket, computing its service duration from the call
// time. Anonymous walk-ins update no customer aggregate.
func (s *Service) Finish(ctx context.Context, tenantID, ticketID string, actor Actor, observations string) (*Ticket, error) {
	var meta map[string]any
	if observations != "" {
		meta = map[string]any{"observations": observations}
	}

	t, err := s.transition(ctx, tenantID, ticketID, ActionFinish, actor, EventFinished, audit.TypeTicketFinished, meta, func(t *Ticket, now time.Time) {
		t.Status = StatusFinished
		t.FinishedAt = &now
		// Service starts when the party is seated (confirmed), falling
		// back to the call time, floored at zero when neither is set.
		start := t.CalledAt
		if t.ConfirmedAt != nil {
			start = t.ConfirmedAt
		}
		if start != nil && now.After(*start) {
			t.ServiceDuration = now.Sub(*start)
		} else {
			t.ServiceDuration = 0
		}
	})
	if err != nil {
		return nil, err
	}

	s.metrics.recordServiceDuration(ctx, t.ServiceDuration.Minutes())

	if t.CustomerID != "" {
		if err := s.customers.ApplyVisit(ctx, t.TenantID, t.CustomerID, t.Priority); err != nil {
			slog.ErrorContext(ctx, "failed to apply customer visit",
				logger.TicketID(t.ID),
				logger.CustomerID(t.CustomerID),
				logger.Error(err),
			)
		}
	}
	return t, nil
}

// Cancel cancels a ticket. Customers may cancel their own waiting, called
// or confirmed tickets; staff may cancel from any non-terminal status and
// have the cancelling identity plus an optional reason recorded.
func (s *Service) Cancel(ctx context.Context, tenantID, ticketID string, actor Actor, reason string) (*Ticket, error) {
	action := ActionCancel
	if actor.Kind == ActorStaff || actor.Kind == ActorAdmin {
		action = ActionStaffCancel
	}

	var meta map[string]any
	if reason != "" {
		meta = map[string]any{"reason": reason}
	}

	return s.transition(ctx, tenantID, ticketID, action, actor, EventCancelled, audit.TypeTicketCancelled, meta, func(t *Ticket, now time.Time) {
		t.Status = StatusCancelled
		t.CancelledAt = &now
	})
}

// PositionAndETA returns a ticket's live rank and estimated wait.
func (s *Service) PositionAndETA(ctx context.Context, tenantID, ticketID string) (Position, error) {
	t, err := s.tickets.GetByID(ctx, tenantID, ticketID)
	if err != nil {
		return Position{}, err
	}
	return s.positionAndETA(ctx, t)
}

// GetTicket retrieves a ticket scoped to the tenant.
func (s *Service) GetTicket(ctx context.Context, tenantID, ticketID string) (*Ticket, error) {
	return s.tickets.GetByID(ctx, tenantID, ticketID)
}

// GetQueue retrieves a queue scoped to the tenant.
func (s *Service) GetQueue(ctx context.Context, tenantID, queueID string) (*Queue, error) {
	return s.queues.GetByID(ctx, tenantID, queueID)
}

// ListQueues returns the tenant's queues.
func (s *Service) ListQueues(ctx context.Context, tenantID string) ([]*Queue, error) {
	return s.queues.ListByTenant(ctx, tenantID)
}

// ListWaiting returns the waiting set of a queue in serving order.
func (s *Service) ListWaiting(ctx context.Context, tenantID, queueID string) ([]*Ticket, error) {
	waiting, err := s.tickets.ListWaiting(ctx, tenantID, queueID)
	if err != nil {
		return nil, err
	}
	SortByPriority(waiting)
	return waiting, nil
}

// ListEvents returns a ticket's append-only event history.
func (s *Service) ListEvents(ctx context.Context, tenantID, ticketID string) ([]*Event, error) {
	return s.tickets.ListEvents(ctx, tenantID, ticketID)
}

// transition loads the ticket, validates the action against the transition
// table, applies mutate, and persists the ticket together with its event
// in one storage transaction.
func (s *Service) transition(
	ctx context.Context,
	tenantID, ticketID string,
	action Action,
	actor Actor,
	eventKind, auditType string,
	meta map[string]any,
	mutate func(t *Ticket, now time.Time),
) (*Ticket, error) {
	t, err := s.tickets.GetByID(ctx, tenantID, ticketID)
	if err != nil {
		return nil, err
	}

	if !ValidTransition(action, t.Status) {
		return nil, &InvalidStateError{Action: action, From: t.Status}
	}

	from := t.Status
	now := s.now()
	mutate(t, now)

	ev := s.newEvent(t, eventKind, actor, meta)
	if err := s.tickets.Transition(ctx, t, from, ev); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: ticket %s left %s concurrently", ErrConflict, t.ID, from)
		}
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     auditType,
		TenantID: t.TenantID,
		ActorID:  actor.ID,
		Resource: t.ID,
		Metadata: map[string]any{"from": string(from), "to": string(t.Status)},
	})
	s.metrics.recordTransition(ctx, action, t.Status)

	if t.Status != from {
		s.notify(t)
	}
	return t, nil
}

func (s *Service) newEvent(t *Ticket, kind string, actor Actor, meta map[string]any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		TicketID:  t.ID,
		TenantID:  t.TenantID,
		Kind:      kind,
		ActorKind: actor.Kind,
		ActorID:   actor.ID,
		Metadata:  meta,
		CreatedAt: s.now(),
	}
}

// notify fans the transition out after commit. Fire-and-forget: observers
// must never roll back or retry the transition itself.
func (s *Service) notify(t *Ticket) {
	if s.notifier == nil {
		return
	}
	n := Notification{
		TicketID:  t.ID,
		QueueID:   t.QueueID,
		TenantID:  t.TenantID,
		NewStatus: t.Status,
		Timestamp: s.now(),
	}
	go s.notifier.TicketTransitioned(context.Background(), n)
}
