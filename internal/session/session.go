// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package session implements the client-side identity session for Meridia.

It owns the current identity and its session credential, and mediates every
identity lifecycle transition: initialization from a persisted credential,
sign-in, sign-up, sign-out, and partial profile updates.

Architecture:

  - Service: Orchestrates the session state machine and owns all mutation.
  - Directory: Abstracted backend that authenticates and resolves credentials
    (the simulated in-process directory stands in for a real auth service).
  - CredentialStore: Durable home of the single persisted bearer credential.

View layers never hold a mutable reference to the identity; they read
snapshots and call the Service's operations.
*/
package session

import "context"

// # Domain Entities

// Phase enumerates the supported menopause phases.
const (
	PhasePeri = "peri"
	PhaseMeno = "meno"
)

// Identity is the authenticated user's profile data, distinct from the
// credential used to resolve it.
//
// # Invariants
//
// ID and Email are immutable once created. All other fields are optional
// until onboarding completes.
type Identity struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name,omitempty"`
	Phase              string `json:"phase,omitempty"` // 'peri' or 'meno'
	Pronouns           string `json:"pronouns,omitempty"`
	Language           string `json:"language,omitempty"`
	Region             string `json:"region,omitempty"`
	OnboardingComplete bool   `json:"onboardingComplete"`
}

// clone returns a detached copy safe to hand to callers.
func (identity *Identity) clone() *Identity {
	if identity == nil {
		return nil
	}
	copied := *identity
	return &copied
}

// IdentityPatch is a sparse set of profile changes merged onto the current
// identity. ID and Email are deliberately absent: they cannot be patched.
type IdentityPatch struct {
	Name               *string
	Phase              *string
	Pronouns           *string
	Language           *string
	Region             *string
	OnboardingComplete *bool
}

// # Session State Machine

// State describes where the session is in its lifecycle.
type State int

const (
	// StateUninitialized is the zero state before Initialize runs.
	StateUninitialized State = iota
	// StateLoading covers credential resolution and sign-in round-trips.
	StateLoading
	// StateAnonymous means no identity is loaded.
	StateAnonymous
	// StateAuthenticated means an identity and credential are loaded.
	StateAuthenticated
)

// String returns the lowercase state name for logging.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// # Contracts

// CredentialStore persists the single session credential under a well-known
// local key.
type CredentialStore interface {
	/*
		Save persists the credential, replacing any previous value.

		Returns:
		  - error: Storage failures
	*/
	Save(credential string) error

	/*
		Load retrieves the persisted credential.

		Returns:
		  - string: The credential, or "" if none is persisted
		  - error: Storage failures (absence is not an error)
	*/
	Load() (string, error)

	/*
		Clear removes the persisted credential. Clearing an absent
		credential is a no-op.

		Returns:
		  - error: Storage failures
	*/
	Clear() error
}

// Directory is the authentication backend the session talks to.
//
// In this repository the only implementation is the in-process
// [SimulatedDirectory]; a production build would substitute a remote client
// with the same contract.
type Directory interface {
	/*
		Resolve maps a credential back to its identity.

		Parameters:
		  - context: context.Context
		  - credential: string

		Returns:
		  - *Identity: Resolved identity
		  - error: Resolution failures (invalid or expired credential)
	*/
	Resolve(context context.Context, credential string) (*Identity, error)

	/*
		SignIn authenticates an email/secret pair after a simulated
		round-trip delay.

		Returns:
		  - string: Freshly minted credential
		  - *Identity: The signed-in identity
		  - error: apperr.Unauthorized on rejection
	*/
	SignIn(context context.Context, email, secret string) (string, *Identity, error)

	/*
		SignUp enrolls a new identity after a simulated round-trip delay.

		Returns:
		  - string: Freshly minted credential
		  - *Identity: The enrolled identity (onboarding pending)
		  - error: apperr.Conflict if the email is taken
	*/
	SignUp(context context.Context, email, secret, displayName string) (string, *Identity, error)
}

// ProfileRecorder is an optional Directory capability. Directories that
// implement it are handed each patched identity so a later Resolve
// returns the updated profile instead of the enrollment-time one.
type ProfileRecorder interface {
	RecordUpdate(identity Identity)
}
