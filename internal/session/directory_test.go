// Copyright (c) 2026 Meridia Health. All rights reserved.

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridia-health/meridia/internal/platform/apperr"
	"github.com/meridia-health/meridia/internal/session"
)

func newDirectory(t *testing.T, delay time.Duration) *session.SimulatedDirectory {
	t.Helper()
	return session.NewSimulatedDirectory(newTokenService(t), delay)
}

func TestResolveRoundTrip(t *testing.T) {
	directory := newDirectory(t, 0)

	credential, identity, err := directory.SignIn(context.Background(), "x@y.com", "pw")
	require.NoError(t, err)

	resolved, err := directory.Resolve(context.Background(), credential)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, resolved.ID)
	assert.Equal(t, "x@y.com", resolved.Email)
}

func TestResolveRejectsGarbageCredential(t *testing.T) {
	directory := newDirectory(t, 0)

	_, err := directory.Resolve(context.Background(), "garbage")

	assert.Error(t, err)
}

func TestResolveUnknownSubjectFallsBackToDemoIdentity(t *testing.T) {
	directory := newDirectory(t, 0)

	// A credential minted by another process: valid signature, unknown
	// subject in this directory.
	credential, err := newTokenService(t).GenerateToken("unknown-id", "ghost@y.com", time.Hour)
	require.NoError(t, err)

	identity, err := directory.Resolve(context.Background(), credential)
	require.NoError(t, err)
	assert.Equal(t, session.DemoEmail, identity.Email)
	assert.True(t, identity.OnboardingComplete)
}

func TestSignInProvisionsUnknownEmail(t *testing.T) {
	directory := newDirectory(t, 0)

	_, identity, err := directory.SignIn(context.Background(), "fresh@y.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "fresh", identity.Name)
	assert.False(t, identity.OnboardingComplete)
	assert.NotEmpty(t, identity.ID)
}

func TestSignInVerifiesEnrolledSecret(t *testing.T) {
	directory := newDirectory(t, 0)

	_, _, err := directory.SignUp(context.Background(), "a@b.com", "Secret123", "Ana")
	require.NoError(t, err)

	_, _, err = directory.SignIn(context.Background(), "a@b.com", "Secret123")
	assert.NoError(t, err)

	_, _, err = directory.SignIn(context.Background(), "a@b.com", "wrong")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

func TestSignUpDuplicateEmailConflicts(t *testing.T) {
	directory := newDirectory(t, 0)

	_, _, err := directory.SignUp(context.Background(), "a@b.com", "Secret123", "Ana")
	require.NoError(t, err)

	_, _, err = directory.SignUp(context.Background(), "a@b.com", "Other456", "Ana Again")
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

func TestSignUpDemoEmailConflicts(t *testing.T) {
	directory := newDirectory(t, 0)

	_, _, err := directory.SignUp(context.Background(), session.DemoEmail, "Secret123", "Demo Again")

	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

func TestRoundTripDelayHonorsCancellation(t *testing.T) {
	directory := newDirectory(t, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := directory.SignIn(ctx, "x@y.com", "pw")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRecordUpdateSurvivesResolve(t *testing.T) {
	directory := newDirectory(t, 0)

	credential, identity, err := directory.SignIn(context.Background(), "x@y.com", "pw")
	require.NoError(t, err)

	patched := *identity
	patched.Phase = session.PhaseMeno
	patched.OnboardingComplete = true
	directory.RecordUpdate(patched)

	resolved, err := directory.Resolve(context.Background(), credential)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseMeno, resolved.Phase)
	assert.True(t, resolved.OnboardingComplete)
}
