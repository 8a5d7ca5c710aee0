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
	"time"
)

// Estimator defaults. The estimate is recomputed from persisted history on
// every position query rather than cached; queues are small enough (tens of
// tickets) that the always-fresh read wins.
const (
	DefaultEstimateMinutes = 15
	DefaultSampleSize      = 10
)

// Estimator computes a rolling average service duration for a queue from
// its most recent completions.
type Estimator struct {
	tickets        TicketRepository
	sampleSize     int
	defaultMinutes int
}

// NewEstimator creates an estimator. Non-positive tuning values fall back
// to the defaults.
func NewEstimator(tickets TicketRepository, sampleSize, defaultMinutes int) *Estimator {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if defaultMinutes <= 0 {
		defaultMinutes = DefaultEstimateMinutes
	}
	return &Estimator{tickets: tickets, sampleSize: sampleSize, defaultMinutes: defaultMinutes}
}

// Estimate returns the expected per-ticket service time in whole minutes:
// the arithmetic mean of the service durations of the most recent finished
// tickets, rounded up. With no usable samples, or a non-positive mean, it
// returns the configured default.
func (e *Estimator) Estimate(ctx context.Context, tenantID, queueID string) (int, error) {
	finished, err := e.tickets.ListRecentFinished(ctx, tenantID, queueID, e.sampleSize)
	if err != nil {
		return 0, err
	}
	if len(finished) == 0 {
		return e.defaultMinutes, nil
	}

	var total time.Duration
	for _, t := range finished {
		total += t.ServiceDuration
	}
	mean := total / time.Duration(len(finished))
	if mean <= 0 {
		return e.defaultMinutes, nil
	}

	minutes := int((mean + time.Minute - 1) / time.Minute)
	return minutes, nil
}
