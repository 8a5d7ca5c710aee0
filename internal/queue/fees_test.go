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
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates the fee schedule across priority classes and loyalty standing.
// Scope: Unit Test
// Expected: Normal is free; fast lane costs the full fee, halved for loyalty customers; VIP costs the full fee, waived for loyalty customers.
// Test Case ID: FEE-01
func TestFee_Schedule(t *testing.T) {
	q := &Queue{FastLaneFee: 1000, VIPFee: 5000}

	tests := []struct {
		name    string
		class   PriorityClass
		loyalty bool
		want    int64
	}{
		{"normal", PriorityNormal, false, 0},
		{"normal loyalty", PriorityNormal, true, 0},
		{"fast lane", PriorityFastLane, false, 1000},
		{"fast lane loyalty", PriorityFastLane, true, 500},
		{"vip", PriorityVIP, false, 5000},
		{"vip loyalty", PriorityVIP, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fee(q, tt.class, tt.loyalty))
		})
	}
}

// TestPurpose: Validates integer halving of odd fast-lane fees.
// Scope: Unit Test
// Expected: An odd fee halves by integer division, never rounding up.
// Test Case ID: FEE-02
func TestFee_OddFastLaneFeeHalving(t *testing.T) {
	q := &Queue{FastLaneFee: 999}
	assert.Equal(t, int64(499), Fee(q, PriorityFastLane, true))
}
