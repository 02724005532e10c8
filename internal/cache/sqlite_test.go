package cache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ httpcache.Cache = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetSetDelete(t *testing.T) {
	store := openTestStore(t)

	_, ok := store.Get("https://api.github.com/users/octocat/repos")
	assert.False(t, ok, "empty cache must miss")

	body := []byte("HTTP/1.1 200 OK\r\nEtag: \"abc\"\r\n\r\n[]")
	store.Set("https://api.github.com/users/octocat/repos", body)

	got, ok := store.Get("https://api.github.com/users/octocat/repos")
	require.True(t, ok)
	assert.Equal(t, body, got)

	store.Delete("https://api.github.com/users/octocat/repos")
	_, ok = store.Get("https://api.github.com/users/octocat/repos")
	assert.False(t, ok)
}

func TestStore_SetOverwrites(t *testing.T) {
	store := openTestStore(t)

	store.Set("k", []byte("first"))
	store.Set("k", []byte("second"))

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestStore_CompressesLargeBodies(t *testing.T) {
	store := openTestStore(t)
	body := bytes.Repeat([]byte("README line\n"), 4096)

	store.Set("readme", body)

	var stored []byte
	require.NoError(t, store.db.QueryRow(`SELECT body FROM responses WHERE key = ?`, "readme").Scan(&stored))
	assert.Less(t, len(stored), len(body))

	got, ok := store.Get("readme")
	require.True(t, ok)
	assert.Equal(t, body, got)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	first.Set("k", []byte("v"))
	require.NoError(t, first.Close())

	second, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer second.Close()

	got, ok := second.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}
