// Package application models a citizen's request for document issuance and
// the review workflow that drives it to issued, rejected or cancelled.
package application

import (
	"time"

	"github.com/google/uuid"

	id "vault/pkg/domain"
)

// Status is a workflow state. See transitions.go for the legal moves.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusSubmitted    Status = "submitted"
	StatusUnderReview  Status = "under_review"
	StatusInfoRequired Status = "additional_info_required"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusIssued       Status = "issued"
	StatusCancelled    Status = "cancelled"
)

// Comment is one entry in the application's communication thread. Internal
// comments are visible to authority staff only. The list is append-only and
// insertion order is the canonical order.
type Comment struct {
	ID         uuid.UUID
	AuthorID   id.UserID
	AuthorName string
	Body       string
	Internal   bool
	CreatedAt  time.Time
}

// Evidence is one uploaded supporting document reference. Append-only,
// insertion-ordered.
type Evidence struct {
	ID         uuid.UUID
	Name       string
	FileRef    string
	UploadedAt time.Time
}

// Application is a citizen's issuance request. Terminal applications are
// never deleted; they remain as immutable history.
type Application struct {
	ID               id.ApplicationID
	ApplicantID      id.UserID
	Type             id.DocumentType
	Reason           id.ApplicationReason
	Status           Status
	OrganizationID   id.AuthorityID
	Priority         id.Priority
	AssignedTo       id.UserID
	RejectionReason  string
	IssuedDocumentID id.DocumentID
	Evidence         []Evidence
	Comments         []Comment
	Version          int64
	SubmittedAt      *time.Time
	UpdatedAt        time.Time
	CreatedAt        time.Time
}
