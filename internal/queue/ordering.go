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

import "sort"

// Compare orders two tickets for serving: priority class first (VIP before
// fast lane before normal), then arrival time ascending. Arrival times are
// unique at row-creation granularity, but the ticket ID tie-break keeps the
// ordering reproducible across recomputations if they ever collide.
// Returns a negative value when a is served before b.
func Compare(a, b *Ticket) int {
	if ar, br := a.Priority.rank(), b.Priority.rank(); ar != br {
		return ar - br
	}
	if !a.ArrivedAt.Equal(b.ArrivedAt) {
		if a.ArrivedAt.Before(b.ArrivedAt) {
			return -1
		}
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// SortByPriority sorts tickets in place into serving order.
func SortByPriority(tickets []*Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return Compare(tickets[i], tickets[j]) < 0
	})
}
