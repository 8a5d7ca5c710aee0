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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitline/waitline/internal/audit"
)

// ---------------------------------------------------------------------------
// In-memory fakes. The ticket fake emulates the storage-level uniqueness
// constraints (number per queue per day, one active ticket per identity) so
// the allocator and admission paths can be exercised without PostgreSQL.
// ---------------------------------------------------------------------------

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*Ticket
	events  []*Event

	alwaysDuplicate bool
	afterGet        func() // runs after a GetByID, before the caller proceeds
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, t *Ticket, ev *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.alwaysDuplicate {
		return ErrDuplicateNumber
	}
	for _, existing := range r.tickets {
		if existing.QueueID == t.QueueID && existing.Number == t.Number &&
			startOfDay(existing.ArrivedAt).Equal(startOfDay(t.ArrivedAt)) {
			return ErrDuplicateNumber
		}
		if existing.TenantID == t.TenantID && existing.Identity == t.Identity && !existing.Status.Terminal() {
			return ErrActiveTicket
		}
	}

	cp := *t
	r.tickets[t.ID] = &cp
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, tenantID, ticketID string) (*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok || t.TenantID != tenantID {
		return nil, ErrTicketNotFound
	}
	cp := *t
	if r.afterGet != nil {
		r.afterGet()
	}
	return &cp, nil
}

func (r *fakeTicketRepo) Transition(ctx context.Context, t *Ticket, from Status, ev *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tickets[t.ID]
	if !ok || stored.TenantID != t.TenantID {
		return ErrTicketNotFound
	}
	if stored.Status != from {
		return ErrConflict
	}
	cp := *t
	r.tickets[t.ID] = &cp
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeTicketRepo) ListWaiting(ctx context.Context, tenantID, queueID string) ([]*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Ticket
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.QueueID == queueID && t.Status == StatusWaiting {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListRecentFinished(ctx context.Context, tenantID, queueID string, limit int) ([]*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Ticket
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.QueueID == queueID && t.Status == StatusFinished {
			cp := *t
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) CountActive(ctx context.Context, tenantID, queueID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.QueueID == queueID && t.Active() {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) CountCreatedSince(ctx context.Context, tenantID, queueID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.QueueID == queueID && !t.ArrivedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) CountCreatedByIdentitySince(ctx context.Context, tenantID, identity string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.Identity == identity && !t.ArrivedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) FindActiveByIdentity(ctx context.Context, tenantID, identity string) (*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tickets {
		if t.TenantID == tenantID && t.Identity == identity && !t.Status.Terminal() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTicketNotFound
}

func (r *fakeTicketRepo) ListEvents(ctx context.Context, tenantID, ticketID string) ([]*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Event
	for _, ev := range r.events {
		if ev.TenantID == tenantID && ev.TicketID == ticketID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeQueueRepo struct {
	queues map[string]*Queue
}

func (r *fakeQueueRepo) Create(ctx context.Context, q *Queue) error {
	r.queues[q.ID] = q
	return nil
}

func (r *fakeQueueRepo) GetByID(ctx context.Context, tenantID, queueID string) (*Queue, error) {
	q, ok := r.queues[queueID]
	if !ok || q.TenantID != tenantID {
		return nil, ErrQueueNotFound
	}
	return q, nil
}

func (r *fakeQueueRepo) Update(ctx context.Context, q *Queue) error {
	r.queues[q.ID] = q
	return nil
}

func (r *fakeQueueRepo) ListByTenant(ctx context.Context, tenantID string) ([]*Queue, error) {
	var out []*Queue
	for _, q := range r.queues {
		if q.TenantID == tenantID {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	mu      sync.Mutex
	loyalty map[string]bool
	visits  map[string]int
	noShows map[string]int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		loyalty: make(map[string]bool),
		visits:  make(map[string]int),
		noShows: make(map[string]int),
	}
}

func (d *fakeDirectory) IsLoyalty(ctx context.Context, tenantID, customerID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loyalty[customerID], nil
}

func (d *fakeDirectory) ApplyVisit(ctx context.Context, tenantID, customerID string, class PriorityClass) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visits[customerID]++
	return nil
}

func (d *fakeDirectory) RecordNoShow(ctx context.Context, tenantID, customerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.noShows[customerID]++
	return nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

const (
	testTenant = "tenant-1"
	testQueue  = "queue-1"
)

type testEnv struct {
	svc     *Service
	tickets *fakeTicketRepo
	dir     *fakeDirectory
	queue   *Queue
	clock   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	q := &Queue{
		ID:               testQueue,
		TenantID:         testTenant,
		Name:             "Main",
		Prefix:           "A",
		Status:           QueueActive,
		MaxConcurrent:    50,
		MaxEntriesPerDay: 3,
		FastLaneFee:      1000,
		VIPFee:           5000,
	}

	env := &testEnv{
		tickets: newFakeTicketRepo(),
		dir:     newFakeDirectory(),
		queue:   q,
		clock:   time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(
		&fakeQueueRepo{queues: map[string]*Queue{q.ID: q}},
		env.tickets,
		env.dir,
		nil,
		audit.NewSlogLogger(),
		nil,
		Config{
			EnforceEntryCap:  true,
			AllocateAttempts: 5,
			BackoffStep:      time.Millisecond,
		},
	)
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) admit(t *testing.T, identity string, class PriorityClass) *Ticket {
	t.Helper()
	ticket, err := e.svc.Admit(context.Background(), AdmitInput{
		TenantID:  testTenant,
		QueueID:   testQueue,
		Phone:     identity,
		Priority:  class,
		PartySize: 2,
		Channel:   ChannelLocal,
		Actor:     Actor{Kind: ActorStaff, ID: "staff-1"},
	})
	require.NoError(t, err)
	return ticket
}

var staffActor = Actor{Kind: ActorStaff, ID: "staff-1"}

// ---------------------------------------------------------------------------
// Admission
// ---------------------------------------------------------------------------

// TestPurpose: Validates that a first admission creates a waiting ticket with a sequential number and a created event.
// Scope: Unit Test
// Expected: Ticket is WAITING, numbered A-001, with exactly one created event recorded.
// Test Case ID: ENG-01
func TestService_Admit_CreatesWaitingTicket(t *testing.T) {
	env := newTestEnv(t)

	ticket := env.admit(t, "+5511999990001", PriorityNormal)

	assert.Equal(t, StatusWaiting, ticket.Status)
	assert.Equal(t, "A-001", ticket.Number)
	assert.Equal(t, int64(0), ticket.FeeOwed)
	assert.Equal(t, env.clock, ticket.ArrivedAt)

	events, err := env.tickets.ListEvents(context.Background(), testTenant, ticket.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventCreated, events[0].Kind)
}

// TestPurpose: Validates input guards on admission requests.
// Scope: Unit Test
// Expected: Zero party size, unknown priority class and missing identity are each rejected with their sentinel error.
// Test Case ID: ENG-02
func TestService_Admit_InputValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p1",
		Priority: PriorityNormal, PartySize: 0, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrInvalidParty)

	_, err = env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p1",
		Priority: PriorityClass("platinum"), PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue,
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

// TestPurpose: Validates that a paused queue rejects admissions.
// Scope: Unit Test
// Expected: Admit returns ErrQueuePaused without creating a ticket.
// Test Case ID: ENG-03
func TestService_Admit_PausedQueue(t *testing.T) {
	env := newTestEnv(t)
	env.queue.Status = QueuePaused

	_, err := env.svc.Admit(context.Background(), AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p1",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrQueuePaused)
}

// TestPurpose: Validates the queue's concurrency ceiling against active tickets.
// Scope: Unit Test
// Expected: With maxConcurrent=2 the third admission is rejected; after one ticket reaches a terminal state an admission succeeds again.
// Test Case ID: ENG-04
func TestService_Admit_ConcurrencyCeiling(t *testing.T) {
	env := newTestEnv(t)
	env.queue.MaxConcurrent = 2
	ctx := context.Background()

	first := env.admit(t, "p1", PriorityNormal)
	env.admit(t, "p2", PriorityNormal)

	_, err := env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p3",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrQueueFull)

	_, err = env.svc.Cancel(ctx, testTenant, first.ID, Actor{Kind: ActorCustomer}, "")
	require.NoError(t, err)

	env.admit(t, "p3", PriorityNormal)
}

// TestPurpose: Validates that one identity cannot hold two active tickets in the same tenant.
// Scope: Unit Test
// Expected: Second admission for the same phone is rejected with ErrActiveTicket; after cancellation it succeeds.
// Test Case ID: ENG-05
func TestService_Admit_DuplicateActiveIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket := env.admit(t, "p1", PriorityNormal)

	_, err := env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p1",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrActiveTicket)

	_, err = env.svc.Cancel(ctx, testTenant, ticket.ID, Actor{Kind: ActorCustomer}, "")
	require.NoError(t, err)

	env.admit(t, "p1", PriorityNormal)
}

// TestPurpose: Validates the daily re-entry ceiling per identity.
// Scope: Unit Test
// Expected: After three same-day tickets the fourth admission is rejected with ErrEntryLimit; the counter resets on the next UTC day.
// Test Case ID: ENG-06
func TestService_Admit_DailyEntryLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ticket := env.admit(t, "p1", PriorityNormal)
		_, err := env.svc.Cancel(ctx, testTenant, ticket.ID, Actor{Kind: ActorCustomer}, "")
		require.NoError(t, err)
	}

	_, err := env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p1",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrEntryLimit)

	env.advance(24 * time.Hour)
	env.admit(t, "p1", PriorityNormal)
}

// TestPurpose: Validates the fee computed at admission for a loyalty customer in the fast lane.
// Scope: Unit Test
// Expected: The created ticket owes half the configured fast-lane fee.
// Test Case ID: ENG-07
func TestService_Admit_LoyaltyFastLaneFee(t *testing.T) {
	env := newTestEnv(t)
	env.dir.loyalty["cust-1"] = true

	ticket, err := env.svc.Admit(context.Background(), AdmitInput{
		TenantID: testTenant, QueueID: testQueue, CustomerID: "cust-1",
		Priority: PriorityFastLane, PartySize: 2, Channel: ChannelRemote,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), ticket.FeeOwed)
}

// TestPurpose: Validates tenant scoping of queue lookups during admission.
// Scope: Unit Test
// Expected: Admitting into a queue owned by another tenant reports queue not found.
// Test Case ID: ENG-08
func TestService_Admit_CrossTenantQueue(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Admit(context.Background(), AdmitInput{
		TenantID: "tenant-other", QueueID: testQueue, Phone: "p1",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrQueueNotFound)
}

// ---------------------------------------------------------------------------
// Ticket number allocation
// ---------------------------------------------------------------------------

// TestPurpose: Validates sequential number allocation and the remote-channel suffix format.
// Scope: Unit Test
// Expected: Local tickets get A-001, A-002...; remote tickets carry an extra three-digit fragment.
// Test Case ID: ENG-09
func TestService_NumberAllocation_Format(t *testing.T) {
	env := newTestEnv(t)

	first := env.admit(t, "p1", PriorityNormal)
	second := env.admit(t, "p2", PriorityNormal)
	assert.Equal(t, "A-001", first.Number)
	assert.Equal(t, "A-002", second.Number)

	remote, err := env.svc.Admit(context.Background(), AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p3",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelRemote,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^A-003-\d{3}$`, remote.Number)
}

// TestPurpose: Validates that concurrent admissions never share a ticket number.
// Scope: Unit Test
// Expected: Twenty parallel admissions all succeed with twenty distinct numbers.
// Test Case ID: ENG-10
func TestService_NumberAllocation_ConcurrentDistinct(t *testing.T) {
	env := newTestEnv(t)
	env.queue.MaxEntriesPerDay = 0
	// Every round of contention admits at least one ticket, so a budget
	// above the goroutine count makes the outcome deterministic.
	env.svc.allocateAttempts = 40

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Admit(context.Background(), AdmitInput{
				TenantID: testTenant, QueueID: testQueue,
				Phone:    fmt.Sprintf("phone-%d", i),
				Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "admission %d", i)
	}

	seen := make(map[string]bool)
	for _, ticket := range env.tickets.tickets {
		assert.False(t, seen[ticket.Number], "duplicate number %s", ticket.Number)
		seen[ticket.Number] = true
	}
	assert.Len(t, seen, n)
}

// TestPurpose: Validates that the allocator gives up after its attempt budget.
// Scope: Unit Test
// Expected: With storage rejecting every insert as a duplicate, Admit fails with ErrNumberExhausted.
// Test Case ID: ENG-11
func TestService_NumberAllocation_Exhaustion(t *testing.T) {
	env := newTestEnv(t)
	env.tickets.alwaysDuplicate = true

	_, err := env.svc.Admit(context.Background(), AdmitInput{
		TenantID: testTenant, QueueID: testQueue, Phone: "p1",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelLocal,
	})
	assert.ErrorIs(t, err, ErrNumberExhausted)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// TestPurpose: Validates the full happy-path lifecycle and the service duration computed at finish.
// Scope: Unit Test
// Expected: Called at T+5, confirmed at T+6 and finished at T+20 yields a 14 minute service duration and one customer visit.
// Test Case ID: ENG-12
func TestService_Lifecycle_FinishDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket, err := env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, CustomerID: "cust-1",
		Priority: PriorityNormal, PartySize: 2, Channel: ChannelRemote,
	})
	require.NoError(t, err)

	env.advance(5 * time.Minute)
	_, err = env.svc.Call(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)

	env.advance(time.Minute)
	_, err = env.svc.ConfirmPresence(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)

	env.advance(14 * time.Minute)
	finished, err := env.svc.Finish(ctx, testTenant, ticket.ID, staffActor, "window table")
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, finished.Status)
	assert.Equal(t, 14*time.Minute, finished.ServiceDuration)
	assert.Equal(t, 1, env.dir.visits["cust-1"])

	events, err := env.svc.ListEvents(ctx, testTenant, ticket.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, EventFinished, events[3].Kind)
}

// TestPurpose: Validates that finishing is not repeatable and updates the customer aggregate exactly once.
// Scope: Unit Test
// Expected: A second finish fails with an invalid state error and the visit counter stays at one.
// Test Case ID: ENG-13
func TestService_Finish_NotIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket, err := env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, CustomerID: "cust-1",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelRemote,
	})
	require.NoError(t, err)

	_, err = env.svc.Call(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)
	_, err = env.svc.Finish(ctx, testTenant, ticket.ID, staffActor, "")
	require.NoError(t, err)

	_, err = env.svc.Finish(ctx, testTenant, ticket.ID, staffActor, "")
	assert.True(t, IsInvalidState(err))
	assert.Equal(t, 1, env.dir.visits["cust-1"])
}

// TestPurpose: Validates that skipping a called ticket returns it to the waiting set at its original rank.
// Scope: Unit Test
// Expected: The earliest arrival, once called and skipped, is first in serving order again.
// Test Case ID: ENG-14
func TestService_Skip_RestoresOriginalRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.admit(t, "p1", PriorityNormal)
	env.advance(time.Minute)
	env.admit(t, "p2", PriorityNormal)
	env.advance(time.Minute)
	env.admit(t, "p3", PriorityNormal)

	_, err := env.svc.Call(ctx, testTenant, first.ID, staffActor)
	require.NoError(t, err)

	skipped, err := env.svc.Skip(ctx, testTenant, first.ID, staffActor)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, skipped.Status)
	assert.Nil(t, skipped.CalledAt)

	waiting, err := env.svc.ListWaiting(ctx, testTenant, testQueue)
	require.NoError(t, err)
	require.Len(t, waiting, 3)
	assert.Equal(t, first.ID, waiting[0].ID)

	pos, err := env.svc.PositionAndETA(ctx, testTenant, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos.Rank)
}

// TestPurpose: Validates the no-show flow and its customer aggregate side effect.
// Scope: Unit Test
// Expected: Marking a called ticket no-show moves it to NO_SHOW and increments the customer's no-show counter.
// Test Case ID: ENG-15
func TestService_MarkNoShow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket, err := env.svc.Admit(ctx, AdmitInput{
		TenantID: testTenant, QueueID: testQueue, CustomerID: "cust-1",
		Priority: PriorityNormal, PartySize: 1, Channel: ChannelRemote,
	})
	require.NoError(t, err)

	_, err = env.svc.Call(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)

	marked, err := env.svc.MarkNoShow(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, marked.Status)
	assert.Equal(t, 1, marked.NoShowCount)
	assert.Equal(t, 1, env.dir.noShows["cust-1"])
}

// TestPurpose: Validates recall bookkeeping.
// Scope: Unit Test
// Expected: Recalling a called ticket keeps it CALLED and increments its recall counter; the event history gains a recalled entry.
// Test Case ID: ENG-16
func TestService_Recall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket := env.admit(t, "p1", PriorityNormal)
	_, err := env.svc.Call(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)

	recalled, err := env.svc.Recall(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)
	assert.Equal(t, StatusCalled, recalled.Status)
	assert.Equal(t, 1, recalled.RecallCount)

	events, err := env.svc.ListEvents(ctx, testTenant, ticket.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventRecalled, events[2].Kind)
}

// TestPurpose: Validates the differing cancellation rights of customers and staff.
// Scope: Unit Test
// Expected: A customer cannot cancel a SERVING ticket, staff can; terminal tickets cannot be cancelled by anyone.
// Test Case ID: ENG-17
func TestService_Cancel_Permissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket := env.admit(t, "p1", PriorityNormal)
	env.tickets.tickets[ticket.ID].Status = StatusServing

	_, err := env.svc.Cancel(ctx, testTenant, ticket.ID, Actor{Kind: ActorCustomer}, "")
	assert.True(t, IsInvalidState(err))

	cancelled, err := env.svc.Cancel(ctx, testTenant, ticket.ID, staffActor, "walked out")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = env.svc.Cancel(ctx, testTenant, ticket.ID, staffActor, "")
	assert.True(t, IsInvalidState(err))
}

// TestPurpose: Validates optimistic concurrency on transitions.
// Scope: Unit Test
// Expected: A transition whose loaded status was changed underneath reports ErrConflict, leaving the concurrent write intact.
// Test Case ID: ENG-18
func TestService_Transition_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket := env.admit(t, "p1", PriorityNormal)

	// Another staff member cancels between our read and our guarded write.
	env.tickets.afterGet = func() {
		env.tickets.tickets[ticket.ID].Status = StatusCancelled
		env.tickets.afterGet = nil
	}

	_, err := env.svc.Call(ctx, testTenant, ticket.ID, staffActor)
	assert.ErrorIs(t, err, ErrConflict)

	stored := env.tickets.tickets[ticket.ID]
	assert.Equal(t, StatusCancelled, stored.Status)
}

// ---------------------------------------------------------------------------
// Position and ETA
// ---------------------------------------------------------------------------

// TestPurpose: Validates rank and ETA computation for the waiting set.
// Scope: Unit Test
// Expected: Ranks are contiguous from 1 and the ETA is rank times the default estimate when no service history exists.
// Test Case ID: ENG-19
func TestService_Position_RankTimesEstimate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		ticket := env.admit(t, fmt.Sprintf("p%d", i), PriorityNormal)
		ids = append(ids, ticket.ID)
		env.advance(time.Minute)
	}

	for i, id := range ids {
		pos, err := env.svc.PositionAndETA(ctx, testTenant, id)
		require.NoError(t, err)
		assert.Equal(t, i+1, pos.Rank)
		assert.Equal(t, (i+1)*DefaultEstimateMinutes, pos.ETAMinutes)
	}
}

// TestPurpose: Validates that VIP admissions displace waiting normal tickets.
// Scope: Unit Test
// Expected: A VIP arriving last ranks first; the earlier normal tickets each shift down one position.
// Test Case ID: ENG-20
func TestService_Position_VIPPrecedence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	normal1 := env.admit(t, "p1", PriorityNormal)
	env.advance(time.Minute)
	normal2 := env.admit(t, "p2", PriorityNormal)
	env.advance(time.Minute)
	vip := env.admit(t, "p3", PriorityVIP)

	pos, err := env.svc.PositionAndETA(ctx, testTenant, vip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos.Rank)

	pos, err = env.svc.PositionAndETA(ctx, testTenant, normal1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pos.Rank)

	pos, err = env.svc.PositionAndETA(ctx, testTenant, normal2.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos.Rank)
}

// TestPurpose: Validates position output for tickets outside the waiting set.
// Scope: Unit Test
// Expected: A called ticket reports the zero position rather than an error.
// Test Case ID: ENG-21
func TestService_Position_NonWaiting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket := env.admit(t, "p1", PriorityNormal)
	_, err := env.svc.Call(ctx, testTenant, ticket.ID, staffActor)
	require.NoError(t, err)

	pos, err := env.svc.PositionAndETA(ctx, testTenant, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, Position{}, pos)
}
