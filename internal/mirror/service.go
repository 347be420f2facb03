// Copyright (c) 2026 Meridia Health. All rights reserved.

package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridia-health/meridia/internal/platform/apperr"
	"github.com/meridia-health/meridia/internal/platform/metrics"
	"github.com/meridia-health/meridia/internal/platform/validate"
	"github.com/meridia-health/meridia/internal/prefs"
)

// # Service Layer

// Service orchestrates mirror reads and writes.
//
// Reads go cache → database → hard-coded defaults; writes validate the
// document, replace the database record, and refresh the cache. The cache
// is best-effort on both paths.
type Service struct {
	repository Repository
	cache      Cache
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// NewService constructs a [Service]. cache may be nil; recorder must not be
// (use metrics.Noop).
func NewService(repository Repository, cache Cache, recorder metrics.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		recorder:   recorder,
		logger:     logger.With(slog.String("component", "mirror")),
	}
}

/*
Get returns the last mirrored document for an identity, or the defaults
when nothing was ever written.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - prefs.Document: The stored or default document
  - error: Database execution failures
*/
func (service *Service) Get(context context.Context, identityID string) (prefs.Document, error) {
	if service.cache != nil {
		cached, err := service.cache.Get(context, identityID)
		if err != nil {
			service.logger.Warn("mirror_cache_get_failed", slog.Any("error", err))
		} else if cached != nil {
			service.recorder.RecordRead(metrics.ReadSourceCache)
			return cached.Document, nil
		}
	}

	record, err := service.repository.FindByIdentity(context, identityID)
	if err != nil {
		if apperr.IsNotFound(err) {
			service.recorder.RecordRead(metrics.ReadSourceDefault)
			return prefs.DefaultDocument(), nil
		}
		return prefs.Document{}, fmt.Errorf("mirror_service_get_failed: %w", err)
	}

	service.recorder.RecordRead(metrics.ReadSourceDatabase)
	service.fillCache(context, record)
	return record.Document, nil
}

/*
Put validates and stores the full document for an identity, replacing any
previous version.

Parameters:
  - context: context.Context
  - identityID: string
  - document: prefs.Document (the full document, not a patch)

Returns:
  - *Preferences: The stored record
  - error: apperr.ValidationError or database execution failures
*/
func (service *Service) Put(context context.Context, identityID string, document prefs.Document) (*Preferences, error) {
	if err := validateDocument(document); err != nil {
		return nil, err
	}

	record := &Preferences{
		IdentityID: identityID,
		Document:   document,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := service.repository.Upsert(context, record); err != nil {
		return nil, fmt.Errorf("mirror_service_put_failed: %w", err)
	}

	service.recorder.RecordUpsert()
	service.fillCache(context, record)

	service.logger.Info("mirror_document_stored", slog.String("identity_id", identityID))
	return record, nil
}

// fillCache refreshes the cache, logging failures instead of surfacing them.
func (service *Service) fillCache(context context.Context, record *Preferences) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Set(context, record); err != nil {
		service.logger.Warn("mirror_cache_set_failed", slog.Any("error", err))
	}
}

// validateDocument enforces the document's enum and bound constraints.
func validateDocument(document prefs.Document) error {
	v := &validate.Validator{}
	v.OneOf("tone", document.Tone, prefs.ToneNurturing, prefs.ToneCalm, prefs.TonePragmatic)
	v.OneOf("fontSize", document.FontSize, prefs.FontSmall, prefs.FontMedium, prefs.FontLarge)
	v.FloatRange("ttsSpeed", document.TTSSpeed, prefs.TTSSpeedMin, prefs.TTSSpeedMax)
	v.LanguageTag("language", document.Language)
	if document.Region != "" {
		v.RegionCode("region", document.Region)
	}
	for _, reminder := range document.Reminders.Custom {
		v.Required("reminders.custom.id", reminder.ID)
		v.ClockTime("reminders.custom.time", reminder.Time)
	}
	return v.Err()
}
