package handoff

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	handoff   Handoff
	expiresAt time.Time
}

// MemoryStore keeps handoffs in process. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, h *Handoff, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	if _, ok := s.entries[h.ID]; ok {
		return ErrExists
	}
	s.entries[h.ID] = memoryEntry{handoff: copyHandoff(h), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Handoff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	h := copyHandoff(&e.handoff)
	return &h, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	if !s.now().Before(e.expiresAt) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) PingContext(ctx context.Context) error { return nil }

// Len reports live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	return len(s.entries)
}

// evictExpired must be called with mu held.
func (s *MemoryStore) evictExpired() {
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func copyHandoff(h *Handoff) Handoff {
	out := *h
	out.Members = append(out.Members[:0:0], h.Members...)
	return out
}
