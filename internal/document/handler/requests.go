package handler

import "time"

// issueRequest is the internal issuance body used by authority integrations.
// FileContent is the raw document artifact, base64-encoded by encoding/json.
type issueRequest struct {
	ApplicationID  string     `json:"application_id"`
	OwnerID        string     `json:"owner_id"`
	DocumentType   string     `json:"document_type"`
	AuthorityID    string     `json:"authority_id"`
	DocumentNumber string     `json:"document_number,omitempty"`
	FileContent    []byte     `json:"file_content"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
}

type revokeRequest struct {
	Reason string `json:"reason"`
}
