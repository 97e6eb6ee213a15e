package audit

import (
	"context"

	id "vault/pkg/domain"
)

// Store persists access-log entries. Append-only: there is deliberately no
// update or delete operation on this interface.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	// ListByDocument returns entries newest first. The ordering is a contract
	// consumed by the audit-log UI.
	ListByDocument(ctx context.Context, documentID id.DocumentID) ([]Entry, error)
}
