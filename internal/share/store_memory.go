package share

import (
	"context"
	"sync"

	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
)

// InMemoryStore keeps grants in maps guarded by one mutex. The mutex also
// makes IncrementAccessCount atomic, matching the Store contract.
type InMemoryStore struct {
	mu       sync.RWMutex
	grants   map[id.GrantID]Grant
	byDigest map[string]id.GrantID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		grants:   make(map[id.GrantID]Grant),
		byDigest: make(map[string]id.GrantID),
	}
}

func cloneGrant(g Grant) Grant {
	out := g
	out.Permissions = append([]id.Permission{}, g.Permissions...)
	return out
}

func (s *InMemoryStore) Save(_ context.Context, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.grants[grant.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byDigest[grant.TokenDigest]; exists {
		return sentinel.ErrConflict
	}
	stored := cloneGrant(grant)
	stored.AccessToken = ""
	s.grants[grant.ID] = stored
	s.byDigest[grant.TokenDigest] = grant.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, grantID id.GrantID) (Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[grantID]
	if !ok {
		return Grant{}, sentinel.ErrNotFound
	}
	return cloneGrant(grant), nil
}

func (s *InMemoryStore) FindByDigest(_ context.Context, tokenDigest string) (Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grantID, ok := s.byDigest[tokenDigest]
	if !ok {
		return Grant{}, sentinel.ErrNotFound
	}
	return cloneGrant(s.grants[grantID]), nil
}

func (s *InMemoryStore) ListByGrantor(_ context.Context, grantorID id.UserID) ([]Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Grant
	for _, grant := range s.grants {
		if grant.GrantorID == grantorID {
			out = append(out, cloneGrant(grant))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByDocument(_ context.Context, documentID id.DocumentID) ([]Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Grant
	for _, grant := range s.grants {
		if grant.DocumentID == documentID {
			out = append(out, cloneGrant(grant))
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, grantID id.GrantID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[grantID]
	if !ok {
		return sentinel.ErrNotFound
	}
	grant.Status = status
	s.grants[grantID] = grant
	return nil
}

func (s *InMemoryStore) IncrementAccessCount(_ context.Context, grantID id.GrantID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[grantID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	grant.AccessCount++
	s.grants[grantID] = grant
	return grant.AccessCount, nil
}
