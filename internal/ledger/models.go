// Package ledger computes document fingerprints and anchors them in an
// external tamper-evident log. The package never mutates document state;
// callers act on verification results.
package ledger

import (
	"time"

	id "vault/pkg/domain"
)

// Anchor is a write-once commitment of a document fingerprint. Immutable once
// written; at most one anchor exists per document.
type Anchor struct {
	ID          id.AnchorID
	DocumentID  id.DocumentID
	Fingerprint string
	ChainRef    string
	AnchoredAt  time.Time
}

// Verification is the outcome of checking a recomputed fingerprint against
// the anchored one. A mismatch is a normal result, not an error.
type Verification struct {
	Match  bool
	Anchor Anchor
}

// Payload is the canonical input to fingerprinting: the stored file bytes
// plus the metadata fields that must be tamper-evident.
type Payload struct {
	FileBytes      []byte
	Type           id.DocumentType
	DocumentNumber string
	AuthorityID    id.AuthorityID
	IssueDate      time.Time
	ExpiryDate     *time.Time
}
