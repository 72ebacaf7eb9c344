package fetchcache

import (
	"sync"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// MemoryStore is an in-process Store used when caching is disabled and in
// tests. Entries live for the run only.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*schema.CacheEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*schema.CacheEntry)}
}

func (s *MemoryStore) Load(origin string) (*schema.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[origin]
	if !ok {
		return nil, nil
	}
	clone := *entry
	clone.RawRecords = append([]schema.EvidenceRecord(nil), entry.RawRecords...)
	return &clone, nil
}

func (s *MemoryStore) Save(entry *schema.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *entry
	clone.RawRecords = append([]schema.EvidenceRecord(nil), entry.RawRecords...)
	s.entries[entry.Origin] = &clone
	return nil
}

func (s *MemoryStore) Delete(origin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, origin)
	return nil
}

func (s *MemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	origins := make([]string, 0, len(s.entries))
	for origin := range s.entries {
		origins = append(origins, origin)
	}
	return origins, nil
}

func (s *MemoryStore) Close() error { return nil }
