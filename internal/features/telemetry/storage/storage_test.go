package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore_GetItem_WithMissingKey_ReturnsNotFound(t *testing.T) {
	store := NewMemoryStore()

	value, ok, err := store.GetItem(context.Background(), UserIDKey)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func Test_MemoryStore_SetItem_ThenGetItem_ReturnsValue(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.SetItem(context.Background(), UserIDKey, "u1"))
	value, ok, err := store.GetItem(context.Background(), UserIDKey)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", value)
}

func Test_FileStore_SetItem_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	first := NewFileStore(path)
	require.NoError(t, first.SetItem(context.Background(), UserIDKey, "u1"))
	require.NoError(t, first.SetItem(context.Background(), "other", "x"))

	second := NewFileStore(path)
	value, ok, err := second.GetItem(context.Background(), UserIDKey)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", value)

	other, ok, err := second.GetItem(context.Background(), "other")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", other)
}

func Test_FileStore_GetItem_WithMissingFile_ReturnsNotFound(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	_, ok, err := store.GetItem(context.Background(), UserIDKey)

	assert.NoError(t, err)
	assert.False(t, ok)
}

func Test_FileStore_GetItem_WithCorruptFile_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStore(path).GetItem(context.Background(), UserIDKey)

	assert.ErrorContains(t, err, "failed to decode store file")
}

func Test_ValkeyStore_WithoutClient_ReturnsStoreClosed(t *testing.T) {
	store := NewValkeyStore(nil)

	_, _, err := store.GetItem(context.Background(), UserIDKey)
	assert.ErrorIs(t, err, ErrStoreClosed)

	err = store.SetItem(context.Background(), UserIDKey, "u1")
	assert.ErrorIs(t, err, ErrStoreClosed)
}
