package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"planeja/internal/kv"
)

// Store keeps documents in a map. It is the default backend for tests and
// for local runs without a database.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

// Ensure interface conformance
var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewFromFiles seeds the store from <base>/<key>.json for every known key
// that exists on disk. Missing or unreadable files are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range []string{kv.KeyLists, kv.KeySettings, kv.KeyInsights, kv.KeyReminders} {
		data, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil || len(data) == 0 {
			continue
		}
		s.items[key] = data
	}
	return s
}

// Get returns a copy of the stored document.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len returns how many documents are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
