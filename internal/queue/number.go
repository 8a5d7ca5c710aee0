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

	"github.com/waitline/waitline/internal/observability/logger"
)

const ticketNumberPad = 3

// Allocation tuning. The count-then-insert pattern is inherently racy
// under concurrent admission; rather than serializing all admissions behind
// a queue-wide lock, collisions are absorbed by the unique index on
// (queue, day, number) and retried with linear backoff.
const (
	DefaultAllocateAttempts = 5
	DefaultBackoffStep      = 100 * time.Millisecond
)

// nextNumber derives the next sequential ticket number for the queue on
// now's calendar day. Remote admissions carry a millisecond fragment to
// shrink the collision window under bursty concurrent joins; staff-entered
// tickets stay short since staff-side concurrency is low.
func (s *Service) nextNumber(ctx context.Context, q *Queue, channel Channel, now time.Time) (string, error) {
	count, err := s.tickets.CountCreatedSince(ctx, q.TenantID, q.ID, startOfDay(now))
	if err != nil {
		return "", fmt.Errorf("count tickets for sequence: %w", err)
	}

	number := fmt.Sprintf("%s-%0*d", q.Prefix, ticketNumberPad, count+1)
	if channel == ChannelRemote {
		number = fmt.Sprintf("%s-%03d", number, now.UnixMilli()%1000)
	}
	return number, nil
}

// createWithRetry runs the count+format+insert sequence, retrying number
// collisions up to the configured attempt budget. Exhausting the budget is
// the one allocation failure that surfaces to the caller: a duplicate
// number would corrupt the venue's operational sequence.
func (s *Service) createWithRetry(ctx context.Context, q *Queue, t *Ticket, ev *Event) error {
	attempts := s.allocateAttempts
	if attempts <= 0 {
		attempts = DefaultAllocateAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		number, err := s.nextNumber(ctx, q, t.Channel, s.now())
		if err != nil {
			return err
		}
		t.Number = number

		err = s.tickets.Create(ctx, t, ev)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return err
		}

		slog.WarnContext(ctx, "ticket number collision, retrying",
			logger.QueueID(q.ID),
			logger.TicketNumber(number),
			slog.Int("attempt", attempt),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoffStep):
		}
	}

	return fmt.Errorf("%w: queue %s", ErrNumberExhausted, q.ID)
}
