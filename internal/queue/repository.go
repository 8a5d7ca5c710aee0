package queue

import (
	"context"
	"time"
)

// TicketRepository defines the storage interface for tickets and their
// audit events. Create and Transition persist the ticket row and the event
// row in one storage transaction.
type TicketRepository interface {
	// Create inserts a new ticket together with its created event.
	// Returns ErrDuplicateNumber when the ticket number collides for the
	// (queue, day), and ErrActiveTicket when a storage-level uniqueness
	// constraint rejects a second non-terminal ticket for the identity.
	Create(ctx context.Context, t *Ticket, ev *Event) error

	// GetByID retrieves a ticket scoped to a tenant. A ticket belonging
	// to another tenant is reported as ErrTicketNotFound.
	GetByID(ctx context.Context, tenantID, ticketID string) (*Ticket, error)

	// Transition persists a mutated ticket guarded by its previous
	// status, appending ev in the same transaction. Returns ErrConflict
	// when the ticket no longer is in from.
	Transition(ctx context.Context, t *Ticket, from Status, ev *Event) error

	// ListWaiting returns all waiting tickets of a queue, unordered.
	ListWaiting(ctx context.Context, tenantID, queueID string) ([]*Ticket, error)

	// ListRecentFinished returns up to limit finished tickets of a queue
	// ordered by finish time descending.
	ListRecentFinished(ctx context.Context, tenantID, queueID string, limit int) ([]*Ticket, error)

	// CountActive counts tickets in waiting/called/confirmed for a queue.
	CountActive(ctx context.Context, tenantID, queueID string) (int, error)

	// CountCreatedSince counts tickets created for a queue at or after
	// since, regardless of status. Used for daily sequence allocation.
	CountCreatedSince(ctx context.Context, tenantID, queueID string, since time.Time) (int, error)

	// CountCreatedByIdentitySince counts tickets an identity created in
	// the tenant at or after since.
	CountCreatedByIdentitySince(ctx context.Context, tenantID, identity string, since time.Time) (int, error)

	// FindActiveByIdentity returns the identity's non-terminal ticket in
	// the tenant, or ErrTicketNotFound when there is none.
	FindActiveByIdentity(ctx context.Context, tenantID, identity string) (*Ticket, error)

	// ListEvents returns the append-only event history of a ticket.
	ListEvents(ctx context.Context, tenantID, ticketID string) ([]*Event, error)
}

// QueueRepository defines the storage interface for queue configuration.
type QueueRepository interface {
	Create(ctx context.Context, q *Queue) error
	GetByID(ctx context.Context, tenantID, queueID string) (*Queue, error)
	Update(ctx context.Context, q *Queue) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Queue, error)
}
