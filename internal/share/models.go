// Package share models time-boxed, capability-based access to documents.
// A grant carries an unguessable access token; whoever presents the token
// gets exactly the granted permissions until expiry or revocation.
package share

import (
	"time"

	id "vault/pkg/domain"
)

// Status is a grant lifecycle state. Expiry is lazy: a stored row may still
// say active after its window closed, so readers go through EffectiveStatus.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// Grant is one time-boxed share of one document.
type Grant struct {
	ID          id.GrantID
	DocumentID  id.DocumentID
	GrantorID   id.UserID
	Recipient   string
	Purpose     string
	Permissions []id.Permission
	// AccessToken is the raw bearer secret, populated only on the creation
	// path and shown to the grantor exactly once. Stores never keep it.
	AccessToken string
	// TokenDigest is what the stores persist and look grants up by. A leaked
	// grants table yields no usable tokens.
	TokenDigest string
	Status      Status
	AccessCount int64
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// EffectiveStatus derives the real status at now. Revocation wins over
// expiry; an active grant past its window reads as expired.
func EffectiveStatus(g Grant, now time.Time) Status {
	if g.Status == StatusRevoked {
		return StatusRevoked
	}
	if !now.Before(g.ExpiresAt) {
		return StatusExpired
	}
	return g.Status
}

// Allows reports whether the grant carries the given permission.
func (g Grant) Allows(p id.Permission) bool {
	for _, granted := range g.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}
