// Copyright (c) 2026 Meridia Health. All rights reserved.

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meridia-health/meridia/internal/platform/apperr"
	"github.com/meridia-health/meridia/internal/platform/constants"
	"github.com/meridia-health/meridia/internal/platform/sec"
	"github.com/meridia-health/meridia/pkg/uuid"
)

// # Contracts & Types

// CredentialMinter defines the contract for producing signed credentials.
type CredentialMinter interface {
	// GenerateToken creates a signed credential string for the given identity.
	//
	// # Parameters
	//   - identityID: The ID of the identity.
	//   - email: The email of the identity.
	//   - timeToLive: The duration before the credential expires.
	//
	// # Returns
	//   - A signed credential string, or an err if signing fails.
	GenerateToken(identityID, email string, timeToLive time.Duration) (string, error)

	// VerifyToken checks the signature and validity of a credential string.
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// directoryRecord pairs an enrolled identity with its hashed secret.
type directoryRecord struct {
	identity   Identity
	secretHash string
}

// SimulatedDirectory is the in-process stand-in for a real authentication
// backend.
//
// # Behavior
//
// Sign-in on an enrolled email verifies the secret against its bcrypt hash
// and rejects mismatches. Sign-in on an unknown email auto-provisions a fresh
// identity, preserving the accept-any behavior the demo product shipped with.
// A fixed demonstration identity is pre-enrolled so that a credential
// persisted by an earlier process resolves even though the directory itself
// is ephemeral.
type SimulatedDirectory struct {
	mu      sync.Mutex
	byEmail map[string]*directoryRecord
	byID    map[string]*directoryRecord

	minter CredentialMinter
	delay  time.Duration
	demoID string
}

// DemoEmail is the address of the pre-enrolled demonstration identity.
const DemoEmail = "user@example.com"

// NewSimulatedDirectory constructs a directory with the demonstration
// identity enrolled.
//
// # Parameters
//   - minter: Credential signing service (shared secret with the sync API).
//   - roundTripDelay: Artificial latency applied to SignIn/SignUp. Tests
//     pass zero.
func NewSimulatedDirectory(minter CredentialMinter, roundTripDelay time.Duration) *SimulatedDirectory {
	directory := &SimulatedDirectory{
		byEmail: make(map[string]*directoryRecord),
		byID:    make(map[string]*directoryRecord),
		minter:  minter,
		delay:   roundTripDelay,
	}

	// Pre-enroll the demonstration identity with onboarding already complete.
	demo := Identity{
		ID:                 uuid.New(),
		Email:              DemoEmail,
		Name:               "Demo User",
		Phase:              PhasePeri,
		Pronouns:           "she/her",
		Language:           "en",
		Region:             "US",
		OnboardingComplete: true,
	}
	record := &directoryRecord{identity: demo}
	directory.byEmail[demo.Email] = record
	directory.byID[demo.ID] = record
	directory.demoID = demo.ID

	return directory
}

// # Directory Implementation

/*
Resolve maps a credential back to its identity.

Description: Verifies the credential signature, then looks the subject up in
the directory. A valid credential whose subject is no longer enrolled (the
directory is in-memory and process-scoped) falls back to the demonstration
identity, keeping resolution total for any well-signed credential.

Parameters:
  - context: context.Context
  - credential: string

Returns:
  - *Identity: Resolved identity
  - error: Invalid or expired credential
*/
func (directory *SimulatedDirectory) Resolve(context context.Context, credential string) (*Identity, error) {
	claims, err := directory.minter.VerifyToken(credential)
	if err != nil {
		return nil, fmt.Errorf("directory_resolve_failed: %w", err)
	}

	directory.mu.Lock()
	defer directory.mu.Unlock()

	record, found := directory.byID[claims.IdentityID]
	if !found {
		record = directory.byID[directory.demoID]
	}

	identity := record.identity
	return &identity, nil
}

/*
SignIn authenticates an email/secret pair.

Description: Simulates a network round-trip, then either verifies the secret
of an enrolled identity (constant-time bcrypt comparison) or auto-provisions
a fresh identity for an unknown email. The display name of a provisioned
identity defaults to the local-part of the email and onboarding starts
incomplete.

Parameters:
  - context: context.Context
  - email: string
  - secret: string

Returns:
  - string: Freshly minted credential
  - *Identity: The signed-in identity
  - err: apperr.Unauthorized on secret mismatch
*/
func (directory *SimulatedDirectory) SignIn(context context.Context, email, secret string) (string, *Identity, error) {
	if err := directory.simulateRoundTrip(context); err != nil {
		return "", nil, err
	}

	directory.mu.Lock()
	record, found := directory.byEmail[email]
	if found && record.secretHash != "" {
		// Enrolled identity: the secret must match. Generic message to
		// prevent enumeration.
		if !sec.CheckSecretHash(secret, record.secretHash) {
			directory.mu.Unlock()
			return "", nil, apperr.Unauthorized("Invalid login credentials")
		}
	}

	if !found {
		// Unknown email: auto-provision, keeping the demo's open door.
		identity := Identity{
			ID:                 uuid.New(),
			Email:              email,
			Name:               localPart(email),
			OnboardingComplete: false,
		}
		record = &directoryRecord{identity: identity}
		directory.byEmail[email] = record
		directory.byID[identity.ID] = record
	}

	identity := record.identity
	directory.mu.Unlock()

	credential, err := directory.minter.GenerateToken(identity.ID, identity.Email, constants.CredentialTTL)
	if err != nil {
		return "", nil, fmt.Errorf("directory_signin_mint_failed: %w", err)
	}

	return credential, &identity, nil
}

/*
SignUp enrolls a new identity.

Description: Simulates a network round-trip, hashes the secret, and creates
the identity with the explicit display name and onboarding pending.

Parameters:
  - context: context.Context
  - email: string
  - secret: string
  - displayName: string

Returns:
  - string: Freshly minted credential
  - *Identity: The enrolled identity
  - err: apperr.Conflict if the email is already enrolled
*/
func (directory *SimulatedDirectory) SignUp(context context.Context, email, secret, displayName string) (string, *Identity, error) {
	if err := directory.simulateRoundTrip(context); err != nil {
		return "", nil, err
	}

	secretHash, err := sec.HashSecret(secret)
	if err != nil {
		return "", nil, fmt.Errorf("directory_signup_hash_failed: %w", err)
	}

	directory.mu.Lock()
	if _, exists := directory.byEmail[email]; exists {
		directory.mu.Unlock()
		return "", nil, apperr.Conflict("Email is already registered")
	}

	identity := Identity{
		ID:                 uuid.New(),
		Email:              email,
		Name:               displayName,
		OnboardingComplete: false,
	}
	record := &directoryRecord{identity: identity, secretHash: secretHash}
	directory.byEmail[email] = record
	directory.byID[identity.ID] = record
	directory.mu.Unlock()

	credential, err := directory.minter.GenerateToken(identity.ID, identity.Email, constants.CredentialTTL)
	if err != nil {
		return "", nil, fmt.Errorf("directory_signup_mint_failed: %w", err)
	}

	return credential, &identity, nil
}

/*
RecordUpdate writes a patched identity back into the directory so that a
later Resolve returns the updated profile. It satisfies [ProfileRecorder].

Parameters:
  - identity: Identity (full snapshot to store)
*/
func (directory *SimulatedDirectory) RecordUpdate(identity Identity) {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	if record, found := directory.byID[identity.ID]; found {
		record.identity = identity
	}
}

// simulateRoundTrip yields for the configured delay, honoring cancellation.
func (directory *SimulatedDirectory) simulateRoundTrip(ctx context.Context) error {
	if directory.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(directory.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// localPart returns everything before the '@' of an email address.
func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
