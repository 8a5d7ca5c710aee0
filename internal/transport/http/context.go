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

package http

import (
	"context"

	"github.com/waitline/waitline/internal/auth"
	"github.com/waitline/waitline/internal/queue"
)

type contextKey string

const (
	tenantIDKey contextKey = "tenant_id"
	actorKey    contextKey = "actor"
)

// GetTenantID retrieves the authenticated tenant ID from context. Tenant
// context is derived exclusively from the bearer token, never from a
// header a client could spoof.
func GetTenantID(ctx context.Context) string {
	if val, ok := ctx.Value(tenantIDKey).(string); ok {
		return val
	}
	return ""
}

// GetActor retrieves the authenticated actor from context.
func GetActor(ctx context.Context) queue.Actor {
	if val, ok := ctx.Value(actorKey).(queue.Actor); ok {
		return val
	}
	return queue.Actor{}
}

func withIdentity(ctx context.Context, claims *auth.Claims) context.Context {
	kind := queue.ActorCustomer
	switch claims.Role {
	case auth.RoleStaff:
		kind = queue.ActorStaff
	case auth.RoleAdmin:
		kind = queue.ActorAdmin
	}
	ctx = context.WithValue(ctx, tenantIDKey, claims.TenantID)
	return context.WithValue(ctx, actorKey, queue.Actor{Kind: kind, ID: claims.Subject})
}
