package application

import (
	"context"
	"sync"

	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in a map. Used by unit tests and
// zero-config runs.
type InMemoryStore struct {
	mu           sync.RWMutex
	applications map[id.ApplicationID]Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{applications: make(map[id.ApplicationID]Application)}
}

// clone deep-copies the append-only lists so callers cannot mutate stored state.
func clone(app Application) Application {
	out := app
	out.Evidence = append([]Evidence{}, app.Evidence...)
	out.Comments = append([]Comment{}, app.Comments...)
	return out
}

func (s *InMemoryStore) Save(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.applications[app.ID]; exists {
		return sentinel.ErrConflict
	}
	s.applications[app.ID] = clone(app)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.applications[app.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != app.Version-1 {
		return sentinel.ErrVersionConflict
	}
	stored := clone(app)
	// Comments and evidence are owned by the append operations.
	stored.Comments = current.Comments
	stored.Evidence = current.Evidence
	s.applications[app.ID] = stored
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, applicationID id.ApplicationID) (Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return Application{}, sentinel.ErrNotFound
	}
	return clone(app), nil
}

func (s *InMemoryStore) ListByApplicant(_ context.Context, applicantID id.UserID) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Application
	for _, app := range s.applications {
		if app.ApplicantID == applicantID {
			out = append(out, clone(app))
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Application
	for _, app := range s.applications {
		if app.Status == status {
			out = append(out, clone(app))
		}
	}
	return out, nil
}

func (s *InMemoryStore) AppendComment(_ context.Context, applicationID id.ApplicationID, comment Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	app.Comments = append(app.Comments, comment)
	s.applications[applicationID] = app
	return nil
}

func (s *InMemoryStore) AppendEvidence(_ context.Context, applicationID id.ApplicationID, evidence Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	app.Evidence = append(app.Evidence, evidence)
	s.applications[applicationID] = app
	return nil
}
