// Copyright (c) 2026 Meridia Health. All rights reserved.

package prefs_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridia-health/meridia/internal/localstore"
	"github.com/meridia-health/meridia/internal/prefs"
	"github.com/meridia-health/meridia/pkg/pointer"
)

// recordingMirror captures pushed jobs in delivery order.
type recordingMirror struct {
	mu   sync.Mutex
	jobs []prefs.SyncJob
	fail bool
}

func (m *recordingMirror) Push(_ context.Context, job prefs.SyncJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("remote unavailable")
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *recordingMirror) delivered() []prefs.SyncJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]prefs.SyncJob, len(m.jobs))
	copy(out, m.jobs)
	return out
}

func newStoreWithQueue(t *testing.T, queue prefs.SyncQueue) *prefs.Store {
	t.Helper()
	store := prefs.NewStore(localstore.NewMemory(), queue, staticCredential("cred-1"), slog.Default())
	store.Load("id-1")
	return store
}

func decodeJSONBody(r *http.Request, into any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}

func TestSyncerDeliversInEnqueueOrder(t *testing.T) {
	mirror := &recordingMirror{}
	syncer := prefs.NewSyncer(mirror, slog.Default())
	syncer.Start()

	for _, tone := range []string{prefs.ToneCalm, prefs.TonePragmatic, prefs.ToneNurturing} {
		doc := prefs.DefaultDocument()
		doc.Tone = tone
		syncer.Enqueue(prefs.SyncJob{IdentityID: "id-1", Document: doc})
	}
	syncer.Close()

	jobs := mirror.delivered()
	require.Len(t, jobs, 3)
	assert.Equal(t, prefs.ToneCalm, jobs[0].Document.Tone)
	assert.Equal(t, prefs.TonePragmatic, jobs[1].Document.Tone)
	assert.Equal(t, prefs.ToneNurturing, jobs[2].Document.Tone)
}

func TestSyncerSwallowsMirrorFailures(t *testing.T) {
	mirror := &recordingMirror{fail: true}
	syncer := prefs.NewSyncer(mirror, slog.Default())
	syncer.Start()

	syncer.Enqueue(prefs.SyncJob{IdentityID: "id-1", Document: prefs.DefaultDocument()})

	// Close drains without error; the failure only surfaces in logs.
	syncer.Close()
	assert.Empty(t, mirror.delivered())
}

func TestSyncerCloseIsIdempotent(t *testing.T) {
	syncer := prefs.NewSyncer(&recordingMirror{}, slog.Default())
	syncer.Start()
	syncer.Close()
	syncer.Close()
}

func TestSyncerDropsJobsEnqueuedAfterClose(t *testing.T) {
	mirror := &recordingMirror{}
	syncer := prefs.NewSyncer(mirror, slog.Default())
	syncer.Start()
	syncer.Close()

	// A mutation racing shutdown must be shed quietly, never crash.
	assert.NotPanics(t, func() {
		syncer.Enqueue(prefs.SyncJob{IdentityID: "id-1", Document: prefs.DefaultDocument()})
	})
	assert.Empty(t, mirror.delivered())
}

func TestStoreMutationAfterSyncerCloseStillCommits(t *testing.T) {
	syncer := prefs.NewSyncer(&recordingMirror{}, slog.Default())
	syncer.Start()

	store := newStoreWithQueue(t, syncer)
	syncer.Close()

	// Local persistence is authoritative; a closed syncer only costs the
	// advisory mirror push.
	doc, err := store.UpdatePreferences(prefs.PreferencesPatch{Tone: pointer.To(prefs.TonePragmatic)})
	require.NoError(t, err)
	assert.Equal(t, prefs.TonePragmatic, doc.Tone)
}

func TestStoreMutationsReachMirrorInIssueOrder(t *testing.T) {
	mirror := &recordingMirror{}
	syncer := prefs.NewSyncer(mirror, slog.Default())
	syncer.Start()

	store := newStoreWithQueue(t, syncer)

	_, err := store.UpdatePreferences(prefs.PreferencesPatch{Tone: pointer.To(prefs.ToneCalm)})
	require.NoError(t, err)
	_, err = store.UpdateReminderSettings(prefs.ReminderTogglesPatch{Bedtime: pointer.To(true)})
	require.NoError(t, err)

	syncer.Close()

	jobs := mirror.delivered()
	require.Len(t, jobs, 2)
	assert.Equal(t, prefs.ToneCalm, jobs[0].Document.Tone)
	assert.False(t, jobs[0].Document.Reminders.Bedtime)
	assert.True(t, jobs[1].Document.Reminders.Bedtime)
}

func TestHTTPMirrorPush(t *testing.T) {
	var gotAuth, gotMethod, gotPath string
	var gotBody prefs.Document
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, decodeJSONBody(r, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mirror := prefs.NewHTTPMirror(server.URL, server.Client())
	doc := prefs.DefaultDocument()
	doc.Tone = prefs.TonePragmatic

	err := mirror.Push(context.Background(), prefs.SyncJob{
		IdentityID: "id-1",
		Credential: "cred-1",
		Document:   doc,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer cred-1", gotAuth)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/user/preferences", gotPath)
	assert.Equal(t, prefs.TonePragmatic, gotBody.Tone)
}

func TestHTTPMirrorRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	mirror := prefs.NewHTTPMirror(server.URL, server.Client())
	err := mirror.Push(context.Background(), prefs.SyncJob{Document: prefs.DefaultDocument()})

	assert.Error(t, err)
}

func TestHTTPMirrorHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	mirror := prefs.NewHTTPMirror(server.URL, server.Client())
	err := mirror.Push(ctx, prefs.SyncJob{Document: prefs.DefaultDocument()})

	assert.Error(t, err)
}
