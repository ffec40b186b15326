package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeenStore(t *testing.T) (*FileSeenStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seen.json")
	return NewFileSeenStore(path), path
}

func TestSeenStoreAddHas(t *testing.T) {
	s, _ := newTestSeenStore(t)

	seen, err := s.Has("https://sprzedajemy.pl/oferta-nr1")
	assert.NoError(t, err)
	assert.False(t, seen)

	assert.NoError(t, s.Add("https://sprzedajemy.pl/oferta-nr1"))

	// After Add succeeds, Has must report true on every subsequent call
	for i := 0; i < 3; i++ {
		seen, err = s.Has("https://sprzedajemy.pl/oferta-nr1")
		assert.NoError(t, err)
		assert.True(t, seen)
	}

	// Adding again is a no-op
	assert.NoError(t, s.Add("https://sprzedajemy.pl/oferta-nr1"))
	size, err := s.Len()
	assert.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestSeenStorePersistence(t *testing.T) {
	s, path := newTestSeenStore(t)
	require.NoError(t, s.Add("https://gratka.pl/oferta-1"))
	require.NoError(t, s.Add("https://gratka.pl/oferta-2"))

	// A fresh store over the same document sees the same entries
	reloaded := NewFileSeenStore(path)
	seen, err := reloaded.Has("https://gratka.pl/oferta-1")
	assert.NoError(t, err)
	assert.True(t, seen)

	size, err := reloaded.Len()
	assert.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestSeenStoreCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	// A corrupt document degrades to an empty set
	s := NewFileSeenStore(path)
	size, err := s.Len()
	assert.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestSeenStoreEvictsOldestFirst(t *testing.T) {
	s, _ := newTestSeenStore(t)

	for i := 0; i <= HighWaterMark; i++ {
		require.NoError(t, s.Add(fmt.Sprintf("https://sprzedajemy.pl/oferta-nr%d", i)))
	}

	size, err := s.Len()
	assert.NoError(t, err)
	assert.Equal(t, PruneTarget, size)

	// The oldest entry is gone, the newest survives
	seen, err := s.Has("https://sprzedajemy.pl/oferta-nr0")
	assert.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.Has(fmt.Sprintf("https://sprzedajemy.pl/oferta-nr%d", HighWaterMark))
	assert.NoError(t, err)
	assert.True(t, seen)
}

func TestSeenStoreBoundInvariant(t *testing.T) {
	s, _ := newTestSeenStore(t)

	for i := 0; i < HighWaterMark+500; i++ {
		require.NoError(t, s.Add(fmt.Sprintf("https://olx.pl/oferta/x-ID%d.html", i)))
		size, err := s.Len()
		require.NoError(t, err)
		// Size may touch the mark but never exceeds it past one insertion
		assert.LessOrEqual(t, size, HighWaterMark+1)
	}
}

func TestSeenStoreDocumentShape(t *testing.T) {
	s, path := newTestSeenStore(t)
	require.NoError(t, s.Add("https://vinted.pl/items/1"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string][]string
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"https://vinted.pl/items/1"}, doc["seen_urls"])
}
