package share

import (
	"context"

	id "vault/pkg/domain"
)

// Store persists grants.
//
// UpdateStatus is a plain last-write on the status column; grant status only
// ever moves toward a terminal state so lost updates are harmless.
// IncrementAccessCount must be atomic at the storage layer: concurrent
// accesses through the same token all count.
type Store interface {
	Save(ctx context.Context, grant Grant) error
	FindByID(ctx context.Context, grantID id.GrantID) (Grant, error)
	FindByDigest(ctx context.Context, tokenDigest string) (Grant, error)
	ListByGrantor(ctx context.Context, grantorID id.UserID) ([]Grant, error)
	ListByDocument(ctx context.Context, documentID id.DocumentID) ([]Grant, error)
	UpdateStatus(ctx context.Context, grantID id.GrantID, status Status) error
	IncrementAccessCount(ctx context.Context, grantID id.GrantID) (int64, error)
}
