// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package mirror is the server side of preference sync: it receives full
preference documents from clients and keeps the last one written per
identity.

Remote state is advisory — the client's local copy is authoritative for a
running session — so the contract is deliberately small: replace the whole
document on write, return the last written document (or the defaults) on
read.

Modules:

  - Service: Validation, metrics, and orchestration.
  - Repository: PostgreSQL JSONB persistence.
  - Cache: Redis read-through document cache.
  - Handler: The /user/preferences HTTP surface.
*/
package mirror

import (
	"context"
	"time"

	"github.com/meridia-health/meridia/internal/prefs"
)

// Preferences is the stored mirror record for one identity.
type Preferences struct {
	IdentityID string         `json:"identityId"`
	Document   prefs.Document `json:"document"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// # Storage Contracts

// Repository is the durable home of mirrored documents.
type Repository interface {
	/*
		FindByIdentity retrieves the last written record for an identity.

		Returns:
		  - *Preferences: The stored record
		  - error: apperr.NotFound when nothing was ever written
	*/
	FindByIdentity(context context.Context, identityID string) (*Preferences, error)

	/*
		Upsert replaces the stored document for an identity, creating the
		record on first write.

		Returns:
		  - error: Database execution failures
	*/
	Upsert(context context.Context, record *Preferences) error
}

// Cache is a lossy document cache in front of the repository. A cache
// failure must never fail the request.
type Cache interface {
	/*
		Get retrieves a cached record.

		Returns:
		  - *Preferences: The cached record (nil on miss)
		  - error: Cache transport failures
	*/
	Get(context context.Context, identityID string) (*Preferences, error)

	/*
		Set stores a record with the cache's standard TTL.

		Returns:
		  - error: Cache transport failures
	*/
	Set(context context.Context, record *Preferences) error
}
