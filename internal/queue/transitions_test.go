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

var allStatuses = []Status{
	StatusWaiting, StatusCalled, StatusConfirmed, StatusServing,
	StatusFinished, StatusNoShow, StatusCancelled,
}

// TestPurpose: Exhaustively validates the lifecycle transition table against every action/status pair.
// Scope: Unit Test
// Expected: Exactly the allowed pairs pass; everything else, including every transition out of a terminal status, is rejected.
// Test Case ID: TRN-01
func TestValidTransition_Table(t *testing.T) {
	allowed := map[Action]map[Status]bool{
		ActionCall:        {StatusWaiting: true},
		ActionConfirm:     {StatusCalled: true},
		ActionSkip:        {StatusCalled: true, StatusConfirmed: true},
		ActionRecall:      {StatusCalled: true, StatusConfirmed: true},
		ActionNoShow:      {StatusCalled: true, StatusConfirmed: true},
		ActionFinish:      {StatusCalled: true, StatusConfirmed: true, StatusServing: true},
		ActionCancel:      {StatusWaiting: true, StatusCalled: true, StatusConfirmed: true},
		ActionStaffCancel: {StatusWaiting: true, StatusCalled: true, StatusConfirmed: true, StatusServing: true},
	}

	for action, fromSet := range allowed {
		for _, status := range allStatuses {
			got := ValidTransition(action, status)
			assert.Equal(t, fromSet[status], got, "action %s from %s", action, status)
		}
	}
}

// TestPurpose: Validates that terminal statuses admit no action at all.
// Scope: Unit Test
// Expected: No action fires from FINISHED, NO_SHOW or CANCELLED.
// Test Case ID: TRN-02
func TestValidTransition_TerminalStatuses(t *testing.T) {
	actions := []Action{
		ActionCall, ActionConfirm, ActionSkip, ActionRecall,
		ActionNoShow, ActionFinish, ActionCancel, ActionStaffCancel,
	}
	for _, status := range allStatuses {
		if !status.Terminal() {
			continue
		}
		for _, action := range actions {
			assert.False(t, ValidTransition(action, status), "action %s from terminal %s", action, status)
		}
	}
}

// TestPurpose: Validates rejection of unknown actions.
// Scope: Unit Test
// Expected: An action absent from the table never validates.
// Test Case ID: TRN-03
func TestValidTransition_UnknownAction(t *testing.T) {
	for _, status := range allStatuses {
		assert.False(t, ValidTransition(Action("teleport"), status))
	}
}
