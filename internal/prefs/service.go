// Copyright (c) 2026 Meridia Health. All rights reserved.

package prefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meridia-health/meridia/internal/localstore"
	"github.com/meridia-health/meridia/internal/platform/apperr"
	"github.com/meridia-health/meridia/internal/platform/constants"
)

// # Collaborator Contracts

// CredentialSource supplies the current session credential so outbound
// sync jobs can carry it. An empty string means no session is active.
type CredentialSource interface {
	Credential() string
}

// SyncQueue accepts outbound mirror jobs. Enqueue must never block the
// caller for longer than a channel send.
type SyncQueue interface {
	Enqueue(job SyncJob)
}

// SyncJob is one outbound mirror attempt: the full document as of the
// mutation that produced it, plus the credential active at that moment.
type SyncJob struct {
	IdentityID string
	Credential string
	Document   Document
}

// # Store

// Store owns the preference document for the currently loaded identity.
//
// Every mutation flows through one commit pipeline: apply the patch onto
// the in-memory document, persist the full merged document to the local
// store, then enqueue one ordered remote-sync job. Local persistence is
// synchronous and its failure rolls the in-memory document back to its
// pre-merge value; remote sync is detached and advisory.
type Store struct {
	local       localstore.Store
	queue       SyncQueue
	credentials CredentialSource
	logger      *slog.Logger

	mu         sync.Mutex
	identityID string
	document   Document
	listeners  []func(Document)
}

/*
NewStore constructs a store holding the default document with no identity
scope.

Parameters:
  - local: Keyed local persistence
  - queue: Outbound mirror queue (nil disables remote sync)
  - credentials: Source of the active session credential (nil means none)
  - logger: Structured logger

Returns:
  - *Store: The store, ready for Load
*/
func NewStore(local localstore.Store, queue SyncQueue, credentials CredentialSource, logger *slog.Logger) *Store {
	return &Store{
		local:       local,
		queue:       queue,
		credentials: credentials,
		logger:      logger.With(slog.String("component", "prefs")),
		document:    DefaultDocument(),
	}
}

// # Reads

// Current returns a snapshot of the document. The snapshot never aliases
// the store's owned value.
func (s *Store) Current() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document.clone()
}

// IdentityID returns the identity the document is currently scoped to, or
// empty when unscoped.
func (s *Store) IdentityID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identityID
}

// Subscribe registers a listener invoked with a document snapshot after
// every committed change. Listeners run synchronously on the mutating
// call but without the store's lock held, so they may call back into the
// store; keep them cheap.
func (s *Store) Subscribe(listener func(Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// # Lifecycle

/*
Load replaces the in-memory document with the persisted one for
identityID.

A missing or unparseable persisted document falls back to the defaults;
corruption is treated as absence and never surfaced. The persisted value
is decoded onto a fresh default document, so partial documents written by
older clients stay complete. An empty identityID reverts the store to the
unscoped default document (the signed-out state).

Parameters:
  - identityID: The identity to scope to, or empty for none

Returns:
  - Document: A snapshot of the loaded document
*/
func (s *Store) Load(identityID string) Document {
	s.mu.Lock()

	s.identityID = identityID
	s.document = DefaultDocument()

	if identityID != "" {
		raw, ok, err := s.local.Get(preferencesKey(identityID))
		switch {
		case err != nil:
			s.logger.Warn("prefs_load_read_failed", slog.String("identity_id", identityID), slog.Any("error", err))
		case ok:
			loaded := DefaultDocument()
			if err := json.Unmarshal(raw, &loaded); err != nil {
				s.logger.Warn("prefs_load_corrupt_document", slog.String("identity_id", identityID), slog.Any("error", err))
			} else {
				s.document = loaded
			}
		}
	}

	snapshot := s.document.clone()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return snapshot
}

// # Mutations

/*
UpdatePreferences shallow-merges the top-level scalar fields carried by
the patch. The privacy and reminder sub-objects are untouched; they have
dedicated operations.

Returns:
  - Document: The committed document
  - error: PersistenceFailure when the local write fails
*/
func (s *Store) UpdatePreferences(patch PreferencesPatch) (Document, error) {
	return s.commit(func(doc *Document) {
		patch.apply(doc)
	})
}

/*
UpdatePrivacySettings merges the patch onto the nested privacy object.
All other fields of the document are untouched.

Returns:
  - Document: The committed document
  - error: PersistenceFailure when the local write fails
*/
func (s *Store) UpdatePrivacySettings(patch PrivacyPatch) (Document, error) {
	return s.commit(func(doc *Document) {
		patch.apply(&doc.PrivacySettings)
	})
}

/*
UpdateReminderSettings merges the patch onto the three reminder toggles.
The custom-reminder list is untouched.

Returns:
  - Document: The committed document
  - error: PersistenceFailure when the local write fails
*/
func (s *Store) UpdateReminderSettings(patch ReminderTogglesPatch) (Document, error) {
	return s.commit(func(doc *Document) {
		patch.apply(&doc.Reminders)
	})
}

/*
ToggleSharingCategory flips one category's membership in the audience's
sharing list: a present category is removed, an absent one is appended at
the end, matching the checkbox behavior of the settings surfaces. An
unknown audience leaves the document unchanged.

Parameters:
  - audience: Which sharing list to edit
  - category: The category tag to flip

Returns:
  - Document: The committed document
  - error: PersistenceFailure when the local write fails
*/
func (s *Store) ToggleSharingCategory(audience SharingAudience, category string) (Document, error) {
	return s.commit(func(doc *Document) {
		switch audience {
		case AudienceTherapist:
			doc.PrivacySettings.TherapistCategories = toggleCategory(doc.PrivacySettings.TherapistCategories, category)
		case AudiencePartner:
			doc.PrivacySettings.PartnerCategories = toggleCategory(doc.PrivacySettings.PartnerCategories, category)
		}
	})
}

/*
AddCustomReminder appends reminder to the custom list. Id uniqueness is
the caller's responsibility; the store neither generates nor deduplicates
ids.

Returns:
  - Document: The committed document
  - error: PersistenceFailure when the local write fails
*/
func (s *Store) AddCustomReminder(reminder CustomReminder) (Document, error) {
	return s.commit(func(doc *Document) {
		doc.Reminders.Custom = append(doc.Reminders.Custom, reminder)
	})
}

/*
RemoveCustomReminder removes the first custom reminder matching id. A
miss is a no-op, not an error, but still persists and syncs.

Returns:
  - Document: The committed document
  - error: PersistenceFailure when the local write fails
*/
func (s *Store) RemoveCustomReminder(id string) (Document, error) {
	return s.commit(func(doc *Document) {
		for i, reminder := range doc.Reminders.Custom {
			if reminder.ID == id {
				doc.Reminders.Custom = append(doc.Reminders.Custom[:i], doc.Reminders.Custom[i+1:]...)
				return
			}
		}
	})
}

/*
ResetToDefaults replaces the entire document with the hard-coded default,
discarding all prior customization including custom reminders, and
persists immediately.

Returns:
  - Document: The committed default document
  - error: PersistenceFailure when the local write fails
*/
func (s *Store) ResetToDefaults() (Document, error) {
	return s.commit(func(doc *Document) {
		*doc = DefaultDocument()
	})
}

// # Commit Pipeline

// commit is the single path every mutation takes: mutate a working copy,
// persist it, adopt it, enqueue the sync job, notify listeners. On a
// persistence failure the in-memory document stays at its pre-merge value
// and the failure propagates. The sync job is enqueued while the lock is
// held so jobs reach the queue in commit order; listeners run after it is
// released so they may call back into the store.
func (s *Store) commit(mutate func(*Document)) (Document, error) {
	s.mu.Lock()

	next := s.document.clone()
	mutate(&next)

	if s.identityID != "" {
		raw, err := json.Marshal(next)
		if err != nil {
			s.mu.Unlock()
			return Document{}, apperr.Persistence(fmt.Errorf("prefs_encode_failed: %w", err))
		}
		if err := s.local.Set(preferencesKey(s.identityID), raw); err != nil {
			s.mu.Unlock()
			return Document{}, apperr.Persistence(fmt.Errorf("prefs_persist_failed: %w", err))
		}
	}

	s.document = next

	if s.queue != nil && s.identityID != "" {
		credential := ""
		if s.credentials != nil {
			credential = s.credentials.Credential()
		}
		s.queue.Enqueue(SyncJob{
			IdentityID: s.identityID,
			Credential: credential,
			Document:   next.clone(),
		})
	}

	snapshot := next.clone()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return snapshot, nil
}

// listenersLocked copies the listener slice so the fan-out can run after
// the mutex is released. Callers must hold the mutex.
func (s *Store) listenersLocked() []func(Document) {
	listeners := make([]func(Document), len(s.listeners))
	copy(listeners, s.listeners)
	return listeners
}

func notify(listeners []func(Document), snapshot Document) {
	for _, listener := range listeners {
		listener(snapshot)
	}
}

func preferencesKey(identityID string) string {
	return constants.KeyPreferencesPrefix + identityID
}
