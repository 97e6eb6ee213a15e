package ledger

import (
	"context"

	id "vault/pkg/domain"
)

// Store persists anchors. Implementations must enforce at most one anchor per
// document (sentinel.ErrConflict on violation) so concurrent double-anchoring
// is rejected by storage, not application-level locking.
type Store interface {
	Save(ctx context.Context, anchor Anchor) error
	FindByDocument(ctx context.Context, documentID id.DocumentID) (Anchor, error)
	// ListDocumentIDs returns the IDs of every anchored document, for the
	// registry's reconciliation pass.
	ListDocumentIDs(ctx context.Context) ([]id.DocumentID, error)
}
