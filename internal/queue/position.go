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
	"log/slog"

	"github.com/waitline/waitline/internal/observability/logger"
)

// Position is a ticket's live rank in its queue plus the derived wait
// estimate. Zero values mean the ticket is not waiting.
type Position struct {
	Rank       int `json:"position"`
	ETAMinutes int `json:"eta_minutes"`
}

// positionAndETA ranks t among the waiting tickets of its queue and derives
// the estimated wait. Non-waiting tickets yield (0,0). A ticket that
// vanished from the waiting set between the two reads (transitioned
// concurrently) is treated the same way; the anomaly is logged, never
// surfaced as an error, because the customer-facing position is advisory.
func (s *Service) positionAndETA(ctx context.Context, t *Ticket) (Position, error) {
	if t.Status != StatusWaiting {
		return Position{}, nil
	}

	waiting, err := s.tickets.ListWaiting(ctx, t.TenantID, t.QueueID)
	if err != nil {
		return Position{}, err
	}
	SortByPriority(waiting)

	rank := 0
	for i, w := range waiting {
		if w.ID == t.ID {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		slog.WarnContext(ctx, "ticket missing from waiting set during position computation",
			logger.TicketID(t.ID),
			logger.QueueID(t.QueueID),
		)
		return Position{}, nil
	}

	minutes, err := s.estimator.Estimate(ctx, t.TenantID, t.QueueID)
	if err != nil {
		return Position{}, err
	}
	return Position{Rank: rank, ETAMinutes: rank * minutes}, nil
}
