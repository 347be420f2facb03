// Copyright (c) 2026 Meridia Health. All rights reserved.

package session

import (
	"fmt"

	"github.com/meridia-health/meridia/internal/localstore"
	"github.com/meridia-health/meridia/internal/platform/constants"
)

// StoredCredentials keeps the session credential in a local store under
// the shared key scheme, so a restarted client resumes the same session
// the web client would.
type StoredCredentials struct {
	store localstore.Store
}

// NewStoredCredentials wraps a local store as the credential home.
func NewStoredCredentials(store localstore.Store) *StoredCredentials {
	return &StoredCredentials{store: store}
}

func (s *StoredCredentials) Save(credential string) error {
	if err := s.store.Set(constants.KeyCredential, []byte(credential)); err != nil {
		return fmt.Errorf("credential_save_failed: %w", err)
	}
	return nil
}

// Load returns the persisted credential, or empty when none is stored.
func (s *StoredCredentials) Load() (string, error) {
	value, ok, err := s.store.Get(constants.KeyCredential)
	if err != nil {
		return "", fmt.Errorf("credential_load_failed: %w", err)
	}
	if !ok {
		return "", nil
	}
	return string(value), nil
}

func (s *StoredCredentials) Clear() error {
	if err := s.store.Delete(constants.KeyCredential); err != nil {
		return fmt.Errorf("credential_clear_failed: %w", err)
	}
	return nil
}
