package document

import (
	"context"
	"sync"

	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in a map. Used by unit tests and zero-config
// runs.
type InMemoryStore struct {
	mu           sync.RWMutex
	documents    map[id.DocumentID]Document
	numbers      map[string]bool // authorityID + "/" + documentNumber
	applications map[id.ApplicationID]id.DocumentID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		documents:    make(map[id.DocumentID]Document),
		numbers:      make(map[string]bool),
		applications: make(map[id.ApplicationID]id.DocumentID),
	}
}

func numberKey(doc Document) string {
	return doc.AuthorityID.String() + "/" + doc.DocumentNumber
}

func (s *InMemoryStore) Save(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	if s.numbers[numberKey(doc)] {
		return sentinel.ErrConflict
	}
	if _, exists := s.applications[doc.ApplicationID]; exists {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = doc
	s.numbers[numberKey(doc)] = true
	s.applications[doc.ApplicationID] = doc.ID
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.documents[doc.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != doc.Version-1 {
		return sentinel.ErrVersionConflict
	}
	s.documents[doc.ID] = doc
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, documentID id.DocumentID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	return doc, nil
}

func (s *InMemoryStore) FindByApplication(_ context.Context, applicationID id.ApplicationID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docID, ok := s.applications[applicationID]
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	return s.documents[docID], nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, doc := range s.documents {
		if doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListVerifiedUnanchored(_ context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, doc := range s.documents {
		if doc.Status == StatusVerified && doc.AnchorID.IsNil() {
			out = append(out, doc)
		}
	}
	return out, nil
}

// InMemoryFileStore is the in-process blob collaborator for tests and
// zero-config runs.
type InMemoryFileStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewInMemoryFileStore() *InMemoryFileStore {
	return &InMemoryFileStore{blobs: make(map[string][]byte)}
}

func (s *InMemoryFileStore) Put(_ context.Context, ref string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = append([]byte{}, data...)
	return nil
}

func (s *InMemoryFileStore) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte{}, data...), nil
}
