package ledger

import (
	"context"
	"sync"

	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
)

// InMemoryStore keeps anchors in a map. Used by unit tests and zero-config runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	anchors map[id.DocumentID]Anchor
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{anchors: make(map[id.DocumentID]Anchor)}
}

func (s *InMemoryStore) Save(_ context.Context, anchor Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.anchors[anchor.DocumentID]; exists {
		return sentinel.ErrConflict
	}
	s.anchors[anchor.DocumentID] = anchor
	return nil
}

func (s *InMemoryStore) FindByDocument(_ context.Context, documentID id.DocumentID) (Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	anchor, ok := s.anchors[documentID]
	if !ok {
		return Anchor{}, sentinel.ErrNotFound
	}
	return anchor, nil
}

func (s *InMemoryStore) ListDocumentIDs(_ context.Context) ([]id.DocumentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]id.DocumentID, 0, len(s.anchors))
	for docID := range s.anchors {
		ids = append(ids, docID)
	}
	return ids, nil
}
