package handler

import (
	"time"

	"vault/internal/audit"
	"vault/internal/document"
)

type documentResponse struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"owner_id"`
	DocumentType     string     `json:"document_type"`
	DocumentNumber   string     `json:"document_number"`
	AuthorityID      string     `json:"authority_id"`
	IssueDate        time.Time  `json:"issue_date"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	Status           string     `json:"status"`
	Fingerprint      string     `json:"fingerprint"`
	RevocationReason string     `json:"revocation_reason,omitempty"`
	LastVerifiedAt   *time.Time `json:"last_verified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toResponse(doc document.Document) documentResponse {
	return documentResponse{
		ID:               doc.ID.String(),
		OwnerID:          doc.OwnerID.String(),
		DocumentType:     string(doc.Type),
		DocumentNumber:   doc.DocumentNumber,
		AuthorityID:      doc.AuthorityID.String(),
		IssueDate:        doc.IssueDate,
		ExpiryDate:       doc.ExpiryDate,
		Status:           string(doc.Status),
		Fingerprint:      doc.Fingerprint,
		RevocationReason: doc.RevocationReason,
		LastVerifiedAt:   doc.LastVerifiedAt,
		CreatedAt:        doc.CreatedAt,
	}
}

func toResponses(docs []document.Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	return out
}

type verificationResponse struct {
	IsValid    bool     `json:"is_valid"`
	ChainMatch bool     `json:"chain_match"`
	Warnings   []string `json:"warnings,omitempty"`
}

type auditEntryResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorName  string    `json:"actor_name,omitempty"`
	AccessType string    `json:"access_type"`
	SourceAddr string    `json:"source_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toAuditResponses(entries []audit.Entry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, auditEntryResponse{
			ID:         entry.ID.String(),
			ActorID:    entry.ActorID,
			ActorName:  entry.ActorName,
			AccessType: string(entry.AccessType),
			SourceAddr: entry.SourceAddr,
			UserAgent:  entry.UserAgent,
			OccurredAt: entry.OccurredAt,
		})
	}
	return out
}

type reconciliationResponse struct {
	DocumentsWithoutAnchor []string `json:"documents_without_anchor"`
	AnchorsWithoutDocument []string `json:"anchors_without_document"`
}
