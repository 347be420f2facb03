// Copyright (c) 2026 Meridia Health. All rights reserved.

package mirror_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridia-health/meridia/internal/mirror"
	"github.com/meridia-health/meridia/internal/platform/apperr"
	"github.com/meridia-health/meridia/internal/platform/metrics"
	"github.com/meridia-health/meridia/internal/prefs"
)

// memoryRepository is an in-memory [mirror.Repository].
type memoryRepository struct {
	records map[string]*mirror.Preferences
	fail    bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]*mirror.Preferences)}
}

func (r *memoryRepository) FindByIdentity(_ context.Context, identityID string) (*mirror.Preferences, error) {
	if r.fail {
		return nil, errors.New("database down")
	}
	record, ok := r.records[identityID]
	if !ok {
		return nil, apperr.NotFound("Preferences")
	}
	copied := *record
	return &copied, nil
}

func (r *memoryRepository) Upsert(_ context.Context, record *mirror.Preferences) error {
	if r.fail {
		return errors.New("database down")
	}
	copied := *record
	r.records[record.IdentityID] = &copied
	return nil
}

// memoryCache is an in-memory [mirror.Cache].
type memoryCache struct {
	records map[string]*mirror.Preferences
	fail    bool
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{records: make(map[string]*mirror.Preferences)}
}

func (c *memoryCache) Get(_ context.Context, identityID string) (*mirror.Preferences, error) {
	if c.fail {
		return nil, errors.New("cache down")
	}
	return c.records[identityID], nil
}

func (c *memoryCache) Set(_ context.Context, record *mirror.Preferences) error {
	c.sets++
	if c.fail {
		return errors.New("cache down")
	}
	c.records[record.IdentityID] = record
	return nil
}

func newService(repo mirror.Repository, cache mirror.Cache) *mirror.Service {
	return mirror.NewService(repo, cache, metrics.Noop{}, slog.Default())
}

func TestGetNeverWrittenReturnsDefaults(t *testing.T) {
	service := newService(newMemoryRepository(), newMemoryCache())

	document, err := service.Get(context.Background(), "id-1")

	require.NoError(t, err)
	assert.Equal(t, prefs.DefaultDocument(), document)
}

func TestPutThenGetRoundTrip(t *testing.T) {
	repo := newMemoryRepository()
	service := newService(repo, newMemoryCache())

	document := prefs.DefaultDocument()
	document.Tone = prefs.TonePragmatic
	document.Reminders.Bedtime = true

	record, err := service.Put(context.Background(), "id-1", document)
	require.NoError(t, err)
	assert.Equal(t, "id-1", record.IdentityID)
	assert.WithinDuration(t, time.Now(), record.UpdatedAt, time.Minute)

	got, err := service.Get(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, prefs.TonePragmatic, got.Tone)
	assert.True(t, got.Reminders.Bedtime)
}

func TestPutReplacesWholeDocument(t *testing.T) {
	service := newService(newMemoryRepository(), nil)

	first := prefs.DefaultDocument()
	first.Reminders.Custom = []prefs.CustomReminder{{ID: "r1", Title: "x", Time: "08:00"}}
	_, err := service.Put(context.Background(), "id-1", first)
	require.NoError(t, err)

	second := prefs.DefaultDocument()
	_, err = service.Put(context.Background(), "id-1", second)
	require.NoError(t, err)

	got, err := service.Get(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Empty(t, got.Reminders.Custom)
}

func TestPutRejectsInvalidDocument(t *testing.T) {
	service := newService(newMemoryRepository(), nil)

	tests := []struct {
		name   string
		mutate func(*prefs.Document)
	}{
		{"unknown tone", func(d *prefs.Document) { d.Tone = "shouty" }},
		{"unknown font size", func(d *prefs.Document) { d.FontSize = "gigantic" }},
		{"tts speed out of range", func(d *prefs.Document) { d.TTSSpeed = 5.0 }},
		{"bad language tag", func(d *prefs.Document) { d.Language = "not a tag" }},
		{"bad region code", func(d *prefs.Document) { d.Region = "XYZ123" }},
		{"reminder without id", func(d *prefs.Document) {
			d.Reminders.Custom = []prefs.CustomReminder{{Time: "08:00"}}
		}},
		{"reminder with bad time", func(d *prefs.Document) {
			d.Reminders.Custom = []prefs.CustomReminder{{ID: "r1", Time: "25:99"}}
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			document := prefs.DefaultDocument()
			test.mutate(&document)

			_, err := service.Put(context.Background(), "id-1", document)

			assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
		})
	}
}

func TestGetPrefersCache(t *testing.T) {
	repo := newMemoryRepository()
	cache := newMemoryCache()
	service := newService(repo, cache)

	cached := prefs.DefaultDocument()
	cached.Tone = prefs.ToneCalm
	cache.records["id-1"] = &mirror.Preferences{IdentityID: "id-1", Document: cached}
	repo.fail = true

	got, err := service.Get(context.Background(), "id-1")

	require.NoError(t, err)
	assert.Equal(t, prefs.ToneCalm, got.Tone)
}

func TestCacheFailureFallsThroughToDatabase(t *testing.T) {
	repo := newMemoryRepository()
	service := newService(repo, &memoryCache{fail: true})

	document := prefs.DefaultDocument()
	document.Tone = prefs.TonePragmatic
	repo.records["id-1"] = &mirror.Preferences{IdentityID: "id-1", Document: document}

	got, err := service.Get(context.Background(), "id-1")

	require.NoError(t, err)
	assert.Equal(t, prefs.TonePragmatic, got.Tone)
}

func TestCacheFailureDoesNotFailPut(t *testing.T) {
	service := newService(newMemoryRepository(), &memoryCache{fail: true})

	_, err := service.Put(context.Background(), "id-1", prefs.DefaultDocument())

	assert.NoError(t, err)
}

func TestGetPropagatesDatabaseFailure(t *testing.T) {
	service := newService(&memoryRepository{fail: true}, nil)

	_, err := service.Get(context.Background(), "id-1")

	assert.Error(t, err)
}

func TestPutWarmsCache(t *testing.T) {
	cache := newMemoryCache()
	service := newService(newMemoryRepository(), cache)

	_, err := service.Put(context.Background(), "id-1", prefs.DefaultDocument())

	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.NotNil(t, cache.records["id-1"])
}
