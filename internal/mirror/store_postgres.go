// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package mirror (Postgres) implements the storage layer for mirrored
preference documents.

# Schema Table Mapping
  - sync.preferences: One JSONB document per identity, last write wins.
*/
package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridia-health/meridia/internal/platform/database/schema"
	"github.com/meridia-health/meridia/internal/platform/dberr"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres implementation for mirrored documents.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindByIdentity retrieves the record from the sync.preferences table.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - *Preferences: Hydrated record
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByIdentity(context context.Context, identityID string) (*Preferences, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Preferences.IdentityID, schema.Preferences.Document, schema.Preferences.UpdatedAt,
		schema.Preferences.Table, schema.Preferences.IdentityID,
	)

	record := &Preferences{}
	var raw []byte
	err := repository.pool.QueryRow(context, query, identityID).Scan(
		&record.IdentityID,
		&raw,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "mirror_find_by_identity")
	}

	if err := json.Unmarshal(raw, &record.Document); err != nil {
		return nil, fmt.Errorf("mirror_decode_document_failed: %w", err)
	}
	return record, nil
}

/*
Upsert replaces the stored document for an identity.

Description: First write inserts the row; subsequent writes replace the
document and refresh the updatedat timestamp.

Parameters:
  - context: context.Context
  - record: *Preferences

Returns:
  - error: Database execution failures
*/
func (repository *PostgresRepository) Upsert(context context.Context, record *Preferences) error {
	raw, err := json.Marshal(record.Document)
	if err != nil {
		return fmt.Errorf("mirror_encode_document_failed: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s)
		DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		schema.Preferences.Table,
		schema.Preferences.IdentityID, schema.Preferences.Document, schema.Preferences.UpdatedAt,
		schema.Preferences.IdentityID,
		schema.Preferences.Document, schema.Preferences.Document,
		schema.Preferences.UpdatedAt, schema.Preferences.UpdatedAt,
	)

	if _, err := repository.pool.Exec(context, query, record.IdentityID, raw, record.UpdatedAt); err != nil {
		return dberr.Wrap(err, "mirror_upsert")
	}
	return nil
}
