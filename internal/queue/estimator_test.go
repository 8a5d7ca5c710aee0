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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repoWithFinished(durations ...time.Duration) *fakeTicketRepo {
	repo := newFakeTicketRepo()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, d := range durations {
		id := string(rune('a' + i))
		repo.tickets[id] = &Ticket{
			ID: id, TenantID: testTenant, QueueID: testQueue,
			Status: StatusFinished, ServiceDuration: d,
			ArrivedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return repo
}

// TestPurpose: Validates the default estimate when a queue has no service history.
// Scope: Unit Test
// Expected: An empty sample yields the configured default of 15 minutes.
// Test Case ID: EST-01
func TestEstimator_DefaultWithoutHistory(t *testing.T) {
	est := NewEstimator(newFakeTicketRepo(), 10, 15)

	minutes, err := est.Estimate(context.Background(), testTenant, testQueue)
	require.NoError(t, err)
	assert.Equal(t, 15, minutes)
}

// TestPurpose: Validates the mean service duration over recent completions.
// Scope: Unit Test
// Expected: Durations of 10, 20 and 30 minutes average to 20.
// Test Case ID: EST-02
func TestEstimator_MeanOfSamples(t *testing.T) {
	repo := repoWithFinished(10*time.Minute, 20*time.Minute, 30*time.Minute)
	est := NewEstimator(repo, 10, 15)

	minutes, err := est.Estimate(context.Background(), testTenant, testQueue)
	require.NoError(t, err)
	assert.Equal(t, 20, minutes)
}

// TestPurpose: Validates rounding of fractional mean durations.
// Scope: Unit Test
// Expected: A mean of 10.5 minutes rounds up to 11.
// Test Case ID: EST-03
func TestEstimator_RoundsUp(t *testing.T) {
	repo := repoWithFinished(10*time.Minute, 11*time.Minute)
	est := NewEstimator(repo, 10, 15)

	minutes, err := est.Estimate(context.Background(), testTenant, testQueue)
	require.NoError(t, err)
	assert.Equal(t, 11, minutes)
}

// TestPurpose: Validates fallback when recorded durations are degenerate.
// Scope: Unit Test
// Expected: All-zero samples yield the default estimate instead of zero.
// Test Case ID: EST-04
func TestEstimator_ZeroDurationsFallBack(t *testing.T) {
	repo := repoWithFinished(0, 0, 0)
	est := NewEstimator(repo, 10, 15)

	minutes, err := est.Estimate(context.Background(), testTenant, testQueue)
	require.NoError(t, err)
	assert.Equal(t, 15, minutes)
}

// TestPurpose: Validates constructor fallbacks for non-positive tuning values.
// Scope: Unit Test
// Expected: Zero sample size and zero default are replaced by the package defaults.
// Test Case ID: EST-05
func TestNewEstimator_Defaults(t *testing.T) {
	est := NewEstimator(newFakeTicketRepo(), 0, 0)
	assert.Equal(t, DefaultSampleSize, est.sampleSize)
	assert.Equal(t, DefaultEstimateMinutes, est.defaultMinutes)
}
