// Copyright (c) 2026 Meridia Health. All rights reserved.

package localstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridia-health/meridia/internal/localstore"
)

func TestFileRoundTrip(t *testing.T) {
	store, err := localstore.NewFile(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("token", []byte("abc123")))

	value, ok, err := store.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("abc123"), value)

	require.NoError(t, store.Set("token", []byte("def456")))
	value, _, err = store.Get("token")
	require.NoError(t, err)
	assert.Equal(t, []byte("def456"), value)

	require.NoError(t, store.Delete("token"))
	_, ok, err = store.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileDeleteAbsentKey(t *testing.T) {
	store, err := localstore.NewFile(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("user_preferences_missing"))
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := localstore.NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("user_preferences_abc", []byte(`{"tone":"direct"}`)))

	second, err := localstore.NewFile(dir)
	require.NoError(t, err)

	value, ok, err := second.Get("user_preferences_abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"tone":"direct"}`, string(value))
}

func TestFileHostileKeyStaysInDir(t *testing.T) {
	store, err := localstore.NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("../escape", []byte("x")))

	value, ok, err := store.Get("../escape")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), value)
}

func TestMemoryIsolation(t *testing.T) {
	store := localstore.NewMemory()
	original := []byte("hello")
	require.NoError(t, store.Set("k", original))

	original[0] = 'X'

	value, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), value)
}
