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
	"time"
)

// checkAdmission enforces the capacity and anti-abuse invariants before a
// ticket may be created. These reads are advisory; the storage layer's
// uniqueness constraints close the remaining race windows at insert time.
func (s *Service) checkAdmission(ctx context.Context, q *Queue, identity string, now time.Time) error {
	if q.Status != QueueActive {
		return ErrQueuePaused
	}

	active, err := s.tickets.CountActive(ctx, q.TenantID, q.ID)
	if err != nil {
		return fmt.Errorf("count active tickets: %w", err)
	}
	if active >= q.MaxConcurrent {
		return fmt.Errorf("%w: ceiling %d reached", ErrQueueFull, q.MaxConcurrent)
	}

	_, err = s.tickets.FindActiveByIdentity(ctx, q.TenantID, identity)
	switch {
	case err == nil:
		return ErrActiveTicket
	case !errors.Is(err, ErrTicketNotFound):
		return fmt.Errorf("find active ticket: %w", err)
	}

	// Daily re-entry ceiling; toggled during operational tuning rather
	// than hard-wired.
	if s.enforceEntryCap && q.MaxEntriesPerDay > 0 {
		entries, err := s.tickets.CountCreatedByIdentitySince(ctx, q.TenantID, identity, startOfDay(now))
		if err != nil {
			return fmt.Errorf("count daily entries: %w", err)
		}
		if entries >= q.MaxEntriesPerDay {
			return ErrEntryLimit
		}
	}

	return nil
}

// startOfDay truncates t to midnight UTC; daily counters reset on the UTC
// calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
