package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordStoreDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")

	// Missing document falls back to the built-in list
	s := NewFileKeywordStore(path)
	assert.Equal(t, DefaultKeywords, s.List())

	// Corrupt document falls back too
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	s = NewFileKeywordStore(path)
	assert.Equal(t, DefaultKeywords, s.List())
}

func TestKeywordStoreAddRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	s := NewFileKeywordStore(path)

	assert.NoError(t, s.Add("stary budzik"))
	assert.Contains(t, s.List(), "stary budzik")

	// Order is preserved: new keyword lands at the end
	kws := s.List()
	assert.Equal(t, "stary budzik", kws[len(kws)-1])

	assert.ErrorIs(t, s.Add("stary budzik"), ErrDuplicateKeyword)

	assert.NoError(t, s.Remove("stary budzik"))
	assert.NotContains(t, s.List(), "stary budzik")
	assert.ErrorIs(t, s.Remove("stary budzik"), ErrKeywordNotFound)
}

func TestKeywordStoreRemoveAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	s := NewFileKeywordStore(path)

	first := s.List()[0]
	removed, err := s.RemoveAt(0)
	assert.NoError(t, err)
	assert.Equal(t, first, removed)
	assert.NotContains(t, s.List(), first)

	_, err = s.RemoveAt(999)
	assert.ErrorIs(t, err, ErrKeywordNotFound)
}

func TestKeywordStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	s := NewFileKeywordStore(path)
	require.NoError(t, s.Add("monety kolekcjonerskie"))

	reloaded := NewFileKeywordStore(path)
	assert.Contains(t, reloaded.List(), "monety kolekcjonerskie")
}
