package handoff

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded handoffs in process memory. It stores the encoded
// form so Load goes through the same validation as the Redis store.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, key string, h *Handoff) error {
	data, err := Encode(h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, key string) (*Handoff, error) {
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return Decode(data)
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// put stores raw bytes unvalidated, for tests
func (s *MemoryStore) put(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = raw
}
