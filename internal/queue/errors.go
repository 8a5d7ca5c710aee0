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
	"errors"
	"fmt"
)

// Domain errors. Cross-tenant access is always reported as not-found so a
// caller cannot confirm existence across tenant boundaries.
var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrQueueNotFound   = errors.New("queue not found")
	ErrQueuePaused     = errors.New("queue is not accepting tickets")
	ErrQueueFull       = errors.New("queue full")
	ErrActiveTicket    = errors.New("identity already has an active ticket")
	ErrEntryLimit      = errors.New("daily entry limit reached")
	ErrDuplicateNumber = errors.New("duplicate ticket number")
	ErrNumberExhausted = errors.New("ticket number allocation attempts exhausted")
	ErrConflict        = errors.New("ticket modified concurrently")
	ErrInvalidParty    = errors.New("party size must be at least 1")
	ErrInvalidPriority = errors.New("unknown priority class")
	ErrMissingIdentity = errors.New("admission identity is required")
)

// InvalidStateError reports a transition that is illegal from the ticket's
// current status.
type InvalidStateError struct {
	Action Action
	From   Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s ticket in status %q", e.Action, e.From)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
