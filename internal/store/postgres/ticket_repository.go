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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/waitline/waitline/internal/queue"
)

const uniqueViolation = "23505"

// TicketRepository implements queue.TicketRepository
type TicketRepository struct {
	db *DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, tenant_id, queue_id, customer_id, identity, number,
	priority, status, channel, party_size, fee_owed, no_show_count,
	recall_count, service_duration, arrived_at, called_at, confirmed_at,
	finished_at, cancelled_at`

// Create inserts a ticket and its created event in one transaction.
// Uniqueness violations are translated into the engine's domain errors so
// the allocator can retry number collisions.
func (r *TicketRepository) Create(ctx context.Context, t *queue.Ticket, ev *queue.Event) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tickets (
			id, tenant_id, queue_id, customer_id, identity, number,
			priority, status, channel, party_size, fee_owed, no_show_count,
			recall_count, service_duration, arrived_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		t.ID, t.TenantID, t.QueueID, nullIfEmpty(t.CustomerID), t.Identity, t.Number,
		t.Priority, t.Status, t.Channel, t.PartySize, t.FeeOwed, t.NoShowCount,
		t.RecallCount, t.ServiceDuration.Nanoseconds(), t.ArrivedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "uq_tickets_active_identity" {
				return queue.ErrActiveTicket
			}
			return queue.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a ticket scoped to a tenant
func (r *TicketRepository) GetByID(ctx context.Context, tenantID, ticketID string) (*queue.Ticket, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE id = $1 AND tenant_id = $2
	`, ticketID, tenantID)

	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, queue.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

// Transition persists a mutated ticket guarded by its previous status and
// appends the event in the same transaction.
func (r *TicketRepository) Transition(ctx context.Context, t *queue.Ticket, from queue.Status, ev *queue.Event) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE tickets SET
			status = $3,
			no_show_count = $4,
			recall_count = $5,
			service_duration = $6,
			called_at = $7,
			confirmed_at = $8,
			finished_at = $9,
			cancelled_at = $10
		WHERE id = $1 AND tenant_id = $2 AND status = $11
	`,
		t.ID, t.TenantID, t.Status, t.NoShowCount, t.RecallCount,
		t.ServiceDuration.Nanoseconds(), t.CalledAt, t.ConfirmedAt,
		t.FinishedAt, t.CancelledAt, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if result.RowsAffected() == 0 {
		return queue.ErrConflict
	}

	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListWaiting returns the waiting tickets of a queue, unordered.
func (r *TicketRepository) ListWaiting(ctx context.Context, tenantID, queueID string) ([]*queue.Ticket, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE tenant_id = $1 AND queue_id = $2 AND status = $3
	`, tenantID, queueID, queue.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting tickets: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// ListRecentFinished returns finished tickets ordered by finish time
// descending.
func (r *TicketRepository) ListRecentFinished(ctx context.Context, tenantID, queueID string, limit int) ([]*queue.Ticket, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE tenant_id = $1 AND queue_id = $2 AND status = $3 AND finished_at IS NOT NULL
		ORDER BY finished_at DESC
		LIMIT $4
	`, tenantID, queueID, queue.StatusFinished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished tickets: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// CountActive counts waiting/called/confirmed tickets of a queue.
func (r *TicketRepository) CountActive(ctx context.Context, tenantID, queueID string) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets
		WHERE tenant_id = $1 AND queue_id = $2
		  AND status IN ($3, $4, $5)
	`, tenantID, queueID, queue.StatusWaiting, queue.StatusCalled, queue.StatusConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tickets: %w", err)
	}
	return count, nil
}

// CountCreatedSince counts tickets created for a queue at or after since.
func (r *TicketRepository) CountCreatedSince(ctx context.Context, tenantID, queueID string, since time.Time) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets
		WHERE tenant_id = $1 AND queue_id = $2 AND arrived_at >= $3
	`, tenantID, queueID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// CountCreatedByIdentitySince counts an identity's tickets in the tenant
// created at or after since.
func (r *TicketRepository) CountCreatedByIdentitySince(ctx context.Context, tenantID, identity string, since time.Time) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tickets
		WHERE tenant_id = $1 AND identity = $2 AND arrived_at >= $3
	`, tenantID, identity, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count identity tickets: %w", err)
	}
	return count, nil
}

// FindActiveByIdentity returns the identity's non-terminal ticket.
func (r *TicketRepository) FindActiveByIdentity(ctx context.Context, tenantID, identity string) (*queue.Ticket, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE tenant_id = $1 AND identity = $2
		  AND status IN ($3, $4, $5, $6)
		LIMIT 1
	`, tenantID, identity, queue.StatusWaiting, queue.StatusCalled, queue.StatusConfirmed, queue.StatusServing)

	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, queue.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to find active ticket: %w", err)
	}
	return t, nil
}

// ListEvents returns a ticket's event history in order of occurrence.
func (r *TicketRepository) ListEvents(ctx context.Context, tenantID, ticketID string) ([]*queue.Event, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, ticket_id, tenant_id, kind, actor_kind, actor_id, metadata, created_at
		FROM ticket_events
		WHERE tenant_id = $1 AND ticket_id = $2
		ORDER BY created_at ASC
	`, tenantID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket events: %w", err)
	}
	defer rows.Close()

	var events []*queue.Event
	for rows.Next() {
		var ev queue.Event
		var metadata []byte
		if err := rows.Scan(&ev.ID, &ev.TicketID, &ev.TenantID, &ev.Kind, &ev.ActorKind, &ev.ActorID, &metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket event: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode event metadata: %w", err)
			}
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func insertEvent(ctx context.Context, tx pgx.Tx, ev *queue.Event) error {
	var metadata []byte
	if len(ev.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode event metadata: %w", err)
		}
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO ticket_events (id, ticket_id, tenant_id, kind, actor_kind, actor_id, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, ev.ID, ev.TicketID, ev.TenantID, ev.Kind, ev.ActorKind, ev.ActorID, metadata, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ticket event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*queue.Ticket, error) {
	var t queue.Ticket
	var customerID sql.NullString
	var serviceNanos int64
	var calledAt, confirmedAt, finishedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.TenantID, &t.QueueID, &customerID, &t.Identity, &t.Number,
		&t.Priority, &t.Status, &t.Channel, &t.PartySize, &t.FeeOwed, &t.NoShowCount,
		&t.RecallCount, &serviceNanos, &t.ArrivedAt, &calledAt, &confirmedAt,
		&finishedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		t.CustomerID = customerID.String
	}
	t.ServiceDuration = time.Duration(serviceNanos)
	t.CalledAt = nullTimePtr(calledAt)
	t.ConfirmedAt = nullTimePtr(confirmedAt)
	t.FinishedAt = nullTimePtr(finishedAt)
	t.CancelledAt = nullTimePtr(cancelledAt)
	return &t, nil
}

func scanTickets(rows pgx.Rows) ([]*queue.Ticket, error) {
	var tickets []*queue.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
