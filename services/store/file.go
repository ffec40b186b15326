package store

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/kamilkurczyna/okazje-bot/logger"
	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

// seenDocument is the on-disk shape of the seen-set
type seenDocument struct {
	SeenURLs []string `json:"seen_urls"`
}

// FileSeenStore implements SeenStore as a JSON document on disk.
// Entries keep insertion order so pruning can evict the oldest first.
type FileSeenStore struct {
	mu      sync.Mutex
	path    string
	entries []string
	index   map[string]struct{}
	log     *logger.Logger
}

// NewFileSeenStore opens (or creates) the seen-set at path. A missing
// or corrupt document degrades to an empty set.
func NewFileSeenStore(path string) *FileSeenStore {
	s := &FileSeenStore{
		path:  path,
		index: make(map[string]struct{}),
		log:   logger.ForStore(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", path).Msg("Failed to read seen-set, starting empty")
		}
		return s
	}

	var doc seenDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("Corrupt seen-set document, starting empty")
		return s
	}

	for _, u := range doc.SeenURLs {
		if _, ok := s.index[u]; ok {
			continue
		}
		s.entries = append(s.entries, u)
		s.index[u] = struct{}{}
	}
	return s
}

// Has reports whether url has been seen
func (s *FileSeenStore) Has(url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[url]
	return ok, nil
}

// Add marks url as seen and flushes the document to disk.
// When the set exceeds the high-water mark it is pruned to the target
// size, oldest entries first.
func (s *FileSeenStore) Add(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[url]; ok {
		return nil
	}

	s.entries = append(s.entries, url)
	s.index[url] = struct{}{}

	if len(s.entries) > HighWaterMark {
		evicted := s.entries[:len(s.entries)-PruneTarget]
		for _, old := range evicted {
			delete(s.index, old)
		}
		s.entries = append([]string(nil), s.entries[len(s.entries)-PruneTarget:]...)
		s.log.Info().Int("evicted", len(evicted)).Int("size", len(s.entries)).Msg("Pruned seen-set")
	}

	return s.flush()
}

// Len returns the current size of the set
func (s *FileSeenStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// flush writes the document atomically; callers must hold the mutex
func (s *FileSeenStore) flush() error {
	data, err := json.Marshal(seenDocument{SeenURLs: s.entries})
	if err != nil {
		return errors.NewPersistence("failed to encode seen-set", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.NewPersistence("failed to write seen-set", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.NewPersistence("failed to replace seen-set", err)
	}
	return nil
}
