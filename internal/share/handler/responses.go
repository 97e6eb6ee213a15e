package handler

import (
	"time"

	"vault/internal/document"
	"vault/internal/share"
)

type grantResponse struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Recipient   string    `json:"recipient"`
	Purpose     string    `json:"purpose,omitempty"`
	Permissions []string  `json:"permissions"`
	AccessToken string    `json:"access_token,omitempty"`
	Status      string    `json:"status"`
	AccessCount int64     `json:"access_count"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// toResponse shapes a grant for the wire. The access token is only included
// at creation time; listings never repeat it.
func toResponse(grant share.Grant, includeToken bool) grantResponse {
	resp := grantResponse{
		ID:          grant.ID.String(),
		DocumentID:  grant.DocumentID.String(),
		Recipient:   grant.Recipient,
		Purpose:     grant.Purpose,
		Status:      string(grant.Status),
		AccessCount: grant.AccessCount,
		IssuedAt:    grant.IssuedAt,
		ExpiresAt:   grant.ExpiresAt,
	}
	for _, p := range grant.Permissions {
		resp.Permissions = append(resp.Permissions, p.String())
	}
	if includeToken {
		resp.AccessToken = grant.AccessToken
	}
	return resp
}

func toResponses(grants []share.Grant) []grantResponse {
	out := make([]grantResponse, 0, len(grants))
	for _, grant := range grants {
		out = append(out, toResponse(grant, false))
	}
	return out
}

// sharedDocumentResponse is the recipient-facing view: document metadata
// without owner identifiers or file references.
type sharedDocumentResponse struct {
	DocumentType   string     `json:"document_type"`
	DocumentNumber string     `json:"document_number"`
	AuthorityID    string     `json:"authority_id"`
	IssueDate      time.Time  `json:"issue_date"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	Status         string     `json:"status"`
	Permissions    []string   `json:"permissions"`
	ShareExpiresAt time.Time  `json:"share_expires_at"`
}

func toSharedResponse(grant share.Grant, doc document.Document) sharedDocumentResponse {
	resp := sharedDocumentResponse{
		DocumentType:   string(doc.Type),
		DocumentNumber: doc.DocumentNumber,
		AuthorityID:    doc.AuthorityID.String(),
		IssueDate:      doc.IssueDate,
		ExpiryDate:     doc.ExpiryDate,
		Status:         string(doc.Status),
		ShareExpiresAt: grant.ExpiresAt,
	}
	for _, p := range grant.Permissions {
		resp.Permissions = append(resp.Permissions, p.String())
	}
	return resp
}

type verifyResponse struct {
	Document   sharedDocumentResponse `json:"document"`
	IsValid    bool                   `json:"is_valid"`
	ChainMatch bool                   `json:"chain_match"`
	Warnings   []string               `json:"warnings,omitempty"`
}
