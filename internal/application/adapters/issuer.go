// Package adapters connects the workflow's issuance port to the document
// registry.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"vault/internal/application"
	docservice "vault/internal/document/service"
	id "vault/pkg/domain"
	"vault/pkg/requestcontext"
)

// DocumentIssuer renders the official document artifact for an approved
// application and hands it to the registry. The artifact is deterministic
// JSON so the fingerprint is reproducible from the application itself.
type DocumentIssuer struct {
	docs *docservice.Service
}

func NewDocumentIssuer(docs *docservice.Service) *DocumentIssuer {
	return &DocumentIssuer{docs: docs}
}

func (i *DocumentIssuer) Issue(ctx context.Context, app application.Application) (id.DocumentID, error) {
	artifact, err := json.Marshal(struct {
		ApplicationID string `json:"application_id"`
		ApplicantID   string `json:"applicant_id"`
		DocumentType  string `json:"document_type"`
		AuthorityID   string `json:"authority_id"`
		IssuedAt      string `json:"issued_at"`
	}{
		ApplicationID: app.ID.String(),
		ApplicantID:   app.ApplicantID.String(),
		DocumentType:  string(app.Type),
		AuthorityID:   app.OrganizationID.String(),
		IssuedAt:      requestcontext.Now(ctx).UTC().Format("2006-01-02"),
	})
	if err != nil {
		return id.DocumentID{}, fmt.Errorf("render document artifact: %w", err)
	}

	doc, err := i.docs.Issue(ctx, docservice.IssueRequest{
		ApplicationID: app.ID,
		OwnerID:       app.ApplicantID,
		Type:          app.Type,
		AuthorityID:   app.OrganizationID,
		FileBytes:     artifact,
	})
	if err != nil {
		return id.DocumentID{}, err
	}
	return doc.ID, nil
}
