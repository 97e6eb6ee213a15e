package document

import (
	"context"

	id "vault/pkg/domain"
)

// Store persists documents.
//
// Update performs an optimistic write: doc.Version must already be
// incremented by the caller, and the write only succeeds if the stored row
// still carries doc.Version-1 (sentinel.ErrVersionConflict otherwise).
type Store interface {
	Save(ctx context.Context, doc Document) error
	Update(ctx context.Context, doc Document) error
	FindByID(ctx context.Context, documentID id.DocumentID) (Document, error)
	// FindByApplication returns the document issued for an application, if
	// any. Backs idempotent issuance: one application, one document.
	FindByApplication(ctx context.Context, applicationID id.ApplicationID) (Document, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]Document, error)
	// ListVerifiedUnanchored returns verified documents missing an anchor
	// reference, for the reconciliation pass.
	ListVerifiedUnanchored(ctx context.Context) ([]Document, error)
}

// FileStore is the opaque blob collaborator holding document bytes. Storage
// itself is outside the core; documents only carry the FileRef pointer.
type FileStore interface {
	Put(ctx context.Context, ref string, data []byte) error
	Get(ctx context.Context, ref string) ([]byte, error)
}
