package application

import (
	"context"

	id "vault/pkg/domain"
)

// Store persists applications with their append-only comment and evidence
// lists.
//
// Update performs an optimistic write: app.Version must already be
// incremented by the caller, and the write only succeeds when the stored row
// still carries app.Version-1 (sentinel.ErrVersionConflict otherwise). This
// is what serializes concurrent reviewer actions per application.
type Store interface {
	Save(ctx context.Context, app Application) error
	Update(ctx context.Context, app Application) error
	FindByID(ctx context.Context, applicationID id.ApplicationID) (Application, error)
	ListByApplicant(ctx context.Context, applicantID id.UserID) ([]Application, error)
	ListByStatus(ctx context.Context, status Status) ([]Application, error)
	AppendComment(ctx context.Context, applicationID id.ApplicationID, comment Comment) error
	AppendEvidence(ctx context.Context, applicationID id.ApplicationID, evidence Evidence) error
}
