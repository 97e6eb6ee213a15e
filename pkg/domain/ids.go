// Package domain holds typed identifiers and enumerations shared across vault
// modules. Construct values via the Parse functions at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "vault/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time. A DocumentID can
// never be passed where an ApplicationID is expected.
type (
	UserID        uuid.UUID
	AuthorityID   uuid.UUID
	DocumentID    uuid.UUID
	ApplicationID uuid.UUID
	GrantID       uuid.UUID
	AnchorID      uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseAuthorityID constructs an AuthorityID from external input.
func ParseAuthorityID(s string) (AuthorityID, error) {
	u, err := parseUUID(s, "authority")
	return AuthorityID(u), err
}

// ParseDocumentID constructs a DocumentID from external input.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document")
	return DocumentID(u), err
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application")
	return ApplicationID(u), err
}

// ParseGrantID constructs a GrantID from external input.
func ParseGrantID(s string) (GrantID, error) {
	u, err := parseUUID(s, "grant")
	return GrantID(u), err
}

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewApplicationID returns a fresh random ApplicationID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewGrantID returns a fresh random GrantID.
func NewGrantID() GrantID { return GrantID(uuid.New()) }

// NewAnchorID returns a fresh random AnchorID.
func NewAnchorID() AnchorID { return AnchorID(uuid.New()) }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id AuthorityID) String() string   { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id GrantID) String() string       { return uuid.UUID(id).String() }
func (id AnchorID) String() string      { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id AuthorityID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id GrantID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AnchorID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
