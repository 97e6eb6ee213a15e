// Package document is the authoritative registry of issued documents: their
// identity, issuing authority, status lifecycle and expiry.
package document

import (
	"time"

	id "vault/pkg/domain"
)

// Status is the stored lifecycle state of a document. Expired is derived at
// read time and never persisted as a transition target; Revoked is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

// Document is one issued official record. Never deleted; revocation is the
// terminal soft-delete.
type Document struct {
	ID id.DocumentID
	// ApplicationID ties the document to the application it was issued for.
	// One document per application; the store enforces uniqueness.
	ApplicationID    id.ApplicationID
	OwnerID          id.UserID
	Type             id.DocumentType
	DocumentNumber   string
	AuthorityID      id.AuthorityID
	IssueDate        time.Time
	ExpiryDate       *time.Time
	Status           Status
	Fingerprint      string
	AnchorID         id.AnchorID
	FileRef          string
	RevocationReason string
	LastVerifiedAt   *time.Time
	Version          int64
	CreatedAt        time.Time
}

// EffectiveStatus derives the externally visible status: a verified document
// past its expiry date reads as expired without any stored transition.
// Revoked always wins.
func EffectiveStatus(doc Document, now time.Time) Status {
	if doc.Status == StatusVerified && doc.ExpiryDate != nil && now.After(*doc.ExpiryDate) {
		return StatusExpired
	}
	return doc.Status
}

// VerificationResult is what a re-verification reports to callers. A failed
// chain match is a successfully computed result, not an error.
type VerificationResult struct {
	IsValid    bool
	ChainMatch bool
	Warnings   []string
}

// ReconciliationReport lists the two inconsistency classes a crashed issuance
// can leave behind. Either side being non-empty means a repair is needed.
type ReconciliationReport struct {
	DocumentsWithoutAnchor []id.DocumentID
	AnchorsWithoutDocument []id.DocumentID
}
