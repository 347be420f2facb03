// Copyright (c) 2026 Meridia Health. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridia-health/meridia/internal/platform/sec"
)

/*
TestTokenService_RoundTrip verifies that a minted credential carries the
identity claims back through verification.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewTokenService("test-secret", "meridia.app")
	require.NoError(t, err)

	token, err := service.GenerateToken("0195-abc", "ana@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0195-abc", claims.IdentityID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "meridia.app", claims.Issuer)
}

/*
TestTokenService_RejectsTamperedSecret ensures a credential signed with a
different secret is rejected.
*/
func TestTokenService_RejectsTamperedSecret(t *testing.T) {
	minter, err := sec.NewTokenService("secret-a", "meridia.app")
	require.NoError(t, err)
	verifier, err := sec.NewTokenService("secret-b", "meridia.app")
	require.NoError(t, err)

	token, err := minter.GenerateToken("id", "x@y.com", time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_RejectsExpired ensures an expired credential fails verification.
*/
func TestTokenService_RejectsExpired(t *testing.T) {
	service, err := sec.NewTokenService("test-secret", "meridia.app")
	require.NoError(t, err)

	token, err := service.GenerateToken("id", "x@y.com", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_EmptySecret ensures construction fails without a secret.
*/
func TestTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "meridia.app")
	assert.Error(t, err)
}

/*
TestSecretHash_RoundTrip verifies bcrypt hashing and comparison.
*/
func TestSecretHash_RoundTrip(t *testing.T) {
	hash, err := sec.HashSecret("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.True(t, sec.CheckSecretHash("Secret123", hash))
	assert.False(t, sec.CheckSecretHash("wrong", hash))
}
