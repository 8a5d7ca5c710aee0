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

// Package notify carries ticket transition payloads to observers. The
// delivery transport (websocket fan-out, push, SMS) plugs in behind
// queue.Notifier; the engine neither knows nor cares how many observers
// exist.
package notify

import (
	"context"
	"log/slog"

	"github.com/waitline/waitline/internal/observability/logger"
	"github.com/waitline/waitline/internal/queue"
)

// SlogNotifier logs transition payloads. It stands in for a real fan-out
// transport and is the default wiring in development.
type SlogNotifier struct{}

// NewSlogNotifier creates a new slog-backed notifier
func NewSlogNotifier() *SlogNotifier {
	return &SlogNotifier{}
}

// TicketTransitioned implements queue.Notifier.
func (n *SlogNotifier) TicketTransitioned(ctx context.Context, ev queue.Notification) {
	slog.InfoContext(ctx, "ticket transitioned",
		logger.Component("notify"),
		logger.TicketID(ev.TicketID),
		logger.QueueID(ev.QueueID),
		logger.TenantID(ev.TenantID),
		logger.TicketStatus(string(ev.NewStatus)),
		slog.Time("at", ev.Timestamp),
	)
}
