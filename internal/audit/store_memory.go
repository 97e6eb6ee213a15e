package audit

import (
	"context"
	"sort"
	"sync"

	id "vault/pkg/domain"
)

// InMemoryStore keeps entries per document. Used by unit tests and
// zero-config runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.DocumentID][]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.DocumentID][]Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.DocumentID] = append(s.entries[entry.DocumentID], entry)
	return nil
}

func (s *InMemoryStore) ListByDocument(_ context.Context, documentID id.DocumentID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Entry{}, s.entries[documentID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}
