// Copyright (c) 2026 Meridia Health. All rights reserved.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meridia-health/meridia/internal/platform/apperr"
	"github.com/meridia-health/meridia/internal/platform/constants"
)

// # Service Layer

// Service owns the current identity and session credential.
//
// # State machine
//
// Uninitialized → Loading → {Authenticated, Anonymous}. Authenticated →
// Anonymous via Logout. Anonymous → Loading → Authenticated via Login or
// Signup. The loading flag is cleared on every exit path of Initialize,
// Login, and Signup, including failures.
type Service struct {
	credentialStore CredentialStore
	directory       Directory
	logger          *slog.Logger

	mu           sync.Mutex
	state        State
	identity     *Identity
	credential   string
	loading      bool
	authInFlight bool
	listeners    []func(*Identity)
}

// NewService constructs a new [Service] with its dependencies.
func NewService(credentialStore CredentialStore, directory Directory, logger *slog.Logger) *Service {
	return &Service{
		credentialStore: credentialStore,
		directory:       directory,
		logger:          logger,
		state:           StateUninitialized,
	}
}

// # Snapshots

// Current returns a detached snapshot of the loaded identity, or nil when
// the session is anonymous.
func (service *Service) Current() *Identity {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.identity.clone()
}

// Credential returns the active session credential, or "" when anonymous.
func (service *Service) Credential() string {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.credential
}

// State returns the session's lifecycle state.
func (service *Service) State() State {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.state
}

// IsLoading reports whether a resolution or sign-in round-trip is in flight.
func (service *Service) IsLoading() bool {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.loading
}

// Subscribe registers a listener invoked after every identity transition
// (sign-in, sign-out, profile patch) with a detached snapshot, or nil when
// the session became anonymous.
//
// The Preference Store's Load is wired here by the composition root so the
// document always tracks the active identity.
func (service *Service) Subscribe(listener func(*Identity)) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.listeners = append(service.listeners, listener)
}

// # Lifecycle Operations

/*
Initialize restores the session from a persisted credential at process start.

Description: Reads the persisted credential; if present, resolves it to an
identity through the directory. Resolution failure clears the stale
credential and leaves the session anonymous. Initialize never fails: every
outcome lands in Authenticated or Anonymous with the loading flag cleared.

Parameters:
  - context: context.Context
*/
func (service *Service) Initialize(context context.Context) {
	service.mu.Lock()
	service.state = StateLoading
	service.loading = true
	service.mu.Unlock()

	// Guarantee the loading flag is cleared on every exit path.
	defer func() {
		service.mu.Lock()
		service.loading = false
		service.mu.Unlock()
	}()

	credential, err := service.credentialStore.Load()
	if err != nil {
		service.logger.Warn("session_credential_load_failed", slog.Any("error", err))
		credential = ""
	}

	if credential == "" {
		service.mu.Lock()
		service.state = StateAnonymous
		service.mu.Unlock()
		service.logger.Info("session_initialized", slog.String("state", StateAnonymous.String()))
		return
	}

	identity, err := service.directory.Resolve(context, credential)
	if err != nil {
		// Stale or invalid credential: drop it and start anonymous.
		if clearErr := service.credentialStore.Clear(); clearErr != nil {
			service.logger.Warn("session_credential_clear_failed", slog.Any("error", clearErr))
		}
		service.mu.Lock()
		service.state = StateAnonymous
		service.mu.Unlock()
		service.logger.Info("session_initialized",
			slog.String("state", StateAnonymous.String()),
			slog.Any("resolve_error", err),
		)
		return
	}

	service.mu.Lock()
	service.identity = identity
	service.credential = credential
	service.state = StateAuthenticated
	service.mu.Unlock()

	service.logger.Info("session_initialized",
		slog.String("state", StateAuthenticated.String()),
		slog.String("identity_id", identity.ID),
	)

	service.notify()
}

/*
Login authenticates an email/secret pair and establishes the session.

Description: Rejects a second call while one sign-in round-trip is in
flight. On success the credential is persisted, the identity becomes
current, and a navigation hint is returned: the home route when onboarding
is already complete, the onboarding route otherwise. On any failure the
prior session state is restored and the loading flag is cleared.

Parameters:
  - context: context.Context
  - email: string
  - secret: string

Returns:
  - string: Navigation hint (constants.RouteHome or constants.RouteOnboarding)
  - err: apperr.Conflict (concurrent sign-in), apperr.Unauthorized
    (rejected), or apperr.Persistence (credential write failed)
*/
func (service *Service) Login(parent context.Context, email, secret string) (string, error) {
	return service.authenticate(parent, func(ctx context.Context) (string, *Identity, error) {
		return service.directory.SignIn(ctx, email, secret)
	}, false)
}

/*
Signup enrolls a new identity and establishes the session.

Description: Same mechanics as Login, but the display name comes from the
explicit argument and the hint is always the onboarding route.

Parameters:
  - context: context.Context
  - email: string
  - secret: string
  - displayName: string

Returns:
  - string: Navigation hint (always constants.RouteOnboarding)
  - err: apperr.Conflict, apperr.Unauthorized, or apperr.Persistence
*/
func (service *Service) Signup(parent context.Context, email, secret, displayName string) (string, error) {
	return service.authenticate(parent, func(ctx context.Context) (string, *Identity, error) {
		return service.directory.SignUp(ctx, email, secret, displayName)
	}, true)
}

// authenticate runs a sign-in/sign-up round-trip under the in-flight guard.
func (service *Service) authenticate(
	context context.Context,
	roundTrip func(context.Context) (string, *Identity, error),
	forceOnboarding bool,
) (string, error) {

	// ── 1. In-flight guard ─────────────────────────────────────────────────
	service.mu.Lock()
	if service.authInFlight {
		service.mu.Unlock()
		return "", apperr.Conflict("A sign-in is already in progress")
	}
	priorState := service.state
	service.authInFlight = true
	service.loading = true
	service.state = StateLoading
	service.mu.Unlock()

	// Guarantee the flags are cleared on every exit path.
	defer func() {
		service.mu.Lock()
		service.authInFlight = false
		service.loading = false
		service.mu.Unlock()
	}()

	// restore puts the state machine back where it was before the attempt.
	restore := func() {
		service.mu.Lock()
		service.state = priorState
		service.mu.Unlock()
	}

	// ── 2. Simulated round-trip ────────────────────────────────────────────
	credential, identity, err := roundTrip(context)
	if err != nil {
		restore()
		return "", err
	}

	// ── 3. Persist the credential before adopting the session ─────────────
	if err := service.credentialStore.Save(credential); err != nil {
		restore()
		return "", apperr.Persistence(fmt.Errorf("session_credential_save_failed: %w", err))
	}

	// ── 4. Adopt the new session ───────────────────────────────────────────
	service.mu.Lock()
	service.identity = identity
	service.credential = credential
	service.state = StateAuthenticated
	service.mu.Unlock()

	service.logger.Info("session_authenticated",
		slog.String("identity_id", identity.ID),
		slog.Bool("onboarding_complete", identity.OnboardingComplete),
	)

	service.notify()

	if !forceOnboarding && identity.OnboardingComplete {
		return constants.RouteHome, nil
	}
	return constants.RouteOnboarding, nil
}

/*
Logout clears the in-memory identity and credential and removes the
persisted credential.

Description: Navigation is the caller's responsibility. Logging out of an
anonymous session is a no-op.

Returns:
  - err: apperr.Persistence if removing the persisted credential failed
    (the in-memory session is cleared regardless)
*/
func (service *Service) Logout() error {
	service.mu.Lock()
	wasAuthenticated := service.identity != nil
	service.identity = nil
	service.credential = ""
	service.state = StateAnonymous
	service.mu.Unlock()

	clearErr := service.credentialStore.Clear()

	if wasAuthenticated {
		service.logger.Info("session_logged_out")
		service.notify()
	}

	if clearErr != nil {
		return apperr.Persistence(fmt.Errorf("session_credential_clear_failed: %w", clearErr))
	}
	return nil
}

/*
UpdateIdentity merges a sparse patch onto the current identity.

Description: A no-op (not an error) when no identity is loaded. ID and
email are immutable and absent from the patch type.

Parameters:
  - patch: IdentityPatch
*/
func (service *Service) UpdateIdentity(patch IdentityPatch) {
	service.mu.Lock()
	if service.identity == nil {
		service.mu.Unlock()
		return
	}

	// Apply delta updates
	if patch.Name != nil {
		service.identity.Name = *patch.Name
	}
	if patch.Phase != nil {
		service.identity.Phase = *patch.Phase
	}
	if patch.Pronouns != nil {
		service.identity.Pronouns = *patch.Pronouns
	}
	if patch.Language != nil {
		service.identity.Language = *patch.Language
	}
	if patch.Region != nil {
		service.identity.Region = *patch.Region
	}
	if patch.OnboardingComplete != nil {
		service.identity.OnboardingComplete = *patch.OnboardingComplete
	}

	snapshot := *service.identity
	service.mu.Unlock()

	// Write the patched profile back so a later Resolve sees it.
	if recorder, ok := service.directory.(ProfileRecorder); ok {
		recorder.RecordUpdate(snapshot)
	}

	service.logger.Info("session_identity_updated", slog.String("identity_id", snapshot.ID))

	service.notify()
}

// notify fans the current identity snapshot out to all listeners.
func (service *Service) notify() {
	service.mu.Lock()
	listeners := make([]func(*Identity), len(service.listeners))
	copy(listeners, service.listeners)
	snapshot := service.identity.clone()
	service.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}
