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

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates that an issued token verifies and carries the tenant-scoped identity.
// Scope: Unit Test
// Security: Token integrity (HS256)
// Expected: Verify returns the subject, tenant and role the token was issued with.
// Test Case ID: TOK-01
func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), "waitline", time.Hour)

	token, err := tm.Issue("staff-1", "tenant-1", RoleStaff)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.Subject)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, RoleStaff, claims.Role)
}

// TestPurpose: Validates rejection of tokens signed with a different secret.
// Scope: Unit Test
// Security: Signature forgery prevention
// Expected: A token minted under another secret fails verification.
// Test Case ID: TOK-02
func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager([]byte("secret-a"), "waitline", time.Hour)
	verifier := NewTokenManager([]byte("secret-b"), "waitline", time.Hour)

	token, err := issuer.Issue("staff-1", "tenant-1", RoleStaff)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// TestPurpose: Validates token expiry enforcement.
// Scope: Unit Test
// Security: Token lifetime
// Expected: A token past its lifetime is rejected.
// Test Case ID: TOK-03
func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), "waitline", -time.Minute)

	token, err := tm.Issue("staff-1", "tenant-1", RoleStaff)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// TestPurpose: Validates issuer binding of tokens.
// Scope: Unit Test
// Security: Cross-deployment token reuse prevention
// Expected: A token from a different issuer fails verification even with the shared secret.
// Test Case ID: TOK-04
func TestTokenManager_WrongIssuer(t *testing.T) {
	issuer := NewTokenManager([]byte("test-secret"), "other-system", time.Hour)
	verifier := NewTokenManager([]byte("test-secret"), "waitline", time.Hour)

	token, err := issuer.Issue("staff-1", "tenant-1", RoleStaff)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// TestPurpose: Validates rejection of malformed token strings.
// Scope: Unit Test
// Expected: Garbage input fails verification with ErrInvalidToken.
// Test Case ID: TOK-05
func TestTokenManager_Malformed(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), "waitline", time.Hour)

	_, err := tm.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
