// Package audit records every read, verify, download and share event against
// a document. Entries are append-only; nothing in this package edits or
// deletes them.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "vault/pkg/domain"
)

// SystemActor labels entries produced by automated verification rather than
// an authenticated principal.
const SystemActor = "system"

// Entry is one immutable access-log record.
type Entry struct {
	ID         uuid.UUID
	DocumentID id.DocumentID
	ActorID    string
	ActorName  string
	AccessType id.AccessType
	SourceAddr string
	UserAgent  string
	OccurredAt time.Time
}
