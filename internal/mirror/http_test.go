// Copyright (c) 2026 Meridia Health. All rights reserved.

package mirror_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridia-health/meridia/internal/mirror"
	"github.com/meridia-health/meridia/internal/platform/ctxutil"
	"github.com/meridia-health/meridia/internal/platform/metrics"
	"github.com/meridia-health/meridia/internal/platform/sec"
	"github.com/meridia-health/meridia/internal/prefs"
)

func newHandler() *mirror.Handler {
	service := mirror.NewService(newMemoryRepository(), newMemoryCache(), metrics.Noop{}, slog.Default())
	return mirror.NewHandler(service)
}

func doRequest(t *testing.T, handler *mirror.Handler, method, identityID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, "/preferences", bytes.NewReader(body))
	if identityID != "" {
		claims := &sec.AuthClaims{IdentityID: identityID}
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	}

	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)
	return recorder
}

func TestGetWithoutAuthIsUnauthorized(t *testing.T) {
	recorder := doRequest(t, newHandler(), http.MethodGet, "", nil)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetNeverWrittenReturnsDefaultDocument(t *testing.T) {
	recorder := doRequest(t, newHandler(), http.MethodGet, "id-1", nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data prefs.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, prefs.DefaultDocument(), envelope.Data)
}

func TestPutThenGetReturnsStoredDocument(t *testing.T) {
	handler := newHandler()

	document := prefs.DefaultDocument()
	document.Tone = prefs.ToneCalm
	body, err := json.Marshal(document)
	require.NoError(t, err)

	recorder := doRequest(t, handler, http.MethodPut, "id-1", body)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, handler, http.MethodGet, "id-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data prefs.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, prefs.ToneCalm, envelope.Data.Tone)
}

func TestPutSparseDocumentStoresComplete(t *testing.T) {
	handler := newHandler()

	recorder := doRequest(t, handler, http.MethodPut, "id-1", []byte(`{"tone":"pragmatic"}`))
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, handler, http.MethodGet, "id-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data prefs.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, prefs.TonePragmatic, envelope.Data.Tone)
	assert.Equal(t, prefs.FontMedium, envelope.Data.FontSize)
	assert.True(t, envelope.Data.PrivacySettings.SexualHealthMasked)
}

func TestPutInvalidDocumentIsBadRequest(t *testing.T) {
	recorder := doRequest(t, newHandler(), http.MethodPut, "id-1", []byte(`{"tone":"shouty"}`))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPutMalformedJSONIsBadRequest(t *testing.T) {
	recorder := doRequest(t, newHandler(), http.MethodPut, "id-1", []byte(`{not json`))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestIdentitiesAreIsolated(t *testing.T) {
	handler := newHandler()

	recorder := doRequest(t, handler, http.MethodPut, "id-1", []byte(`{"tone":"calm"}`))
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, handler, http.MethodGet, "id-2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data prefs.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, prefs.ToneNurturing, envelope.Data.Tone)
}
