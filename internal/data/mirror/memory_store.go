package mirror

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used when no MongoDB is configured and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Collection]map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[Collection]map[string]Record)}
}

func (s *MemoryStore) Upsert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collection(rec.Collection)
	if current, ok := coll[rec.ID]; ok && current.Version >= rec.Version {
		return ErrStale
	}
	coll[rec.ID] = rec
	return nil
}

func (s *MemoryStore) ClearLive(_ context.Context, c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collection(c)
	for id, rec := range coll {
		if !rec.Deleted {
			delete(coll, id)
		}
	}
	return nil
}

func (s *MemoryStore) InsertMany(_ context.Context, c Collection, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collection(c)
	for _, rec := range recs {
		coll[rec.ID] = rec
	}
	return nil
}

// Get returns the stored record, tombstones included.
func (s *MemoryStore) Get(c Collection, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[c][id]
	return rec, ok
}

// Live returns the records of c that are not tombstones, keyed by id.
func (s *MemoryStore) Live(c Collection) map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Record)
	for id, rec := range s.collections[c] {
		if !rec.Deleted {
			out[id] = rec
		}
	}
	return out
}

// caller holds mu
func (s *MemoryStore) collection(c Collection) map[string]Record {
	coll, ok := s.collections[c]
	if !ok {
		coll = make(map[string]Record)
		s.collections[c] = coll
	}
	return coll
}
