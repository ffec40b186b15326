package store

import (
	"encoding/json"
	"errors"
	"os"
	"slices"
	"sync"

	"github.com/kamilkurczyna/okazje-bot/logger"
	pkgerrors "github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

var (
	// ErrDuplicateKeyword is returned when adding an existing keyword
	ErrDuplicateKeyword = errors.New("keyword already exists")
	// ErrKeywordNotFound is returned when removing an unknown keyword
	ErrKeywordNotFound = errors.New("keyword not found")
)

// FileKeywordStore implements KeywordStore as a JSON array on disk
type FileKeywordStore struct {
	mu       sync.Mutex
	path     string
	keywords []string
	log      *logger.Logger
}

// NewFileKeywordStore opens (or creates) the keyword list at path.
// A missing or corrupt document degrades to the built-in defaults.
func NewFileKeywordStore(path string) *FileKeywordStore {
	s := &FileKeywordStore{
		path: path,
		log:  logger.ForStore(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.keywords = slices.Clone(DefaultKeywords)
		return s
	}

	if err := json.Unmarshal(data, &s.keywords); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("Corrupt keyword document, using defaults")
		s.keywords = slices.Clone(DefaultKeywords)
	}
	return s
}

// List returns the keywords in order
func (s *FileKeywordStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keywords)
}

// Add appends a keyword; duplicates are rejected
func (s *FileKeywordStore) Add(keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.keywords, keyword) {
		return ErrDuplicateKeyword
	}
	s.keywords = append(s.keywords, keyword)
	return s.flush()
}

// Remove deletes a keyword by exact string match
func (s *FileKeywordStore) Remove(keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.keywords, keyword)
	if idx < 0 {
		return ErrKeywordNotFound
	}
	s.keywords = slices.Delete(s.keywords, idx, idx+1)
	return s.flush()
}

// RemoveAt deletes the keyword at the given zero-based position
func (s *FileKeywordStore) RemoveAt(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.keywords) {
		return "", ErrKeywordNotFound
	}
	removed := s.keywords[index]
	s.keywords = slices.Delete(s.keywords, index, index+1)
	return removed, s.flush()
}

// flush writes the document atomically; callers must hold the mutex
func (s *FileKeywordStore) flush() error {
	data, err := json.MarshalIndent(s.keywords, "", "  ")
	if err != nil {
		return pkgerrors.NewPersistence("failed to encode keywords", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return pkgerrors.NewPersistence("failed to write keywords", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return pkgerrors.NewPersistence("failed to replace keywords", err)
	}
	return nil
}
