package handler

import (
	"time"

	"vault/internal/application"
)

type applicationResponse struct {
	ID               string             `json:"id"`
	ApplicantID      string             `json:"applicant_id"`
	DocumentType     string             `json:"document_type"`
	Reason           string             `json:"reason"`
	Status           string             `json:"status"`
	OrganizationID   string             `json:"organization_id"`
	Priority         string             `json:"priority"`
	AssignedTo       string             `json:"assigned_to,omitempty"`
	RejectionReason  string             `json:"rejection_reason,omitempty"`
	IssuedDocumentID string             `json:"issued_document_id,omitempty"`
	Evidence         []evidenceResponse `json:"evidence,omitempty"`
	Comments         []commentResponse  `json:"comments,omitempty"`
	Version          int64              `json:"version"`
	SubmittedAt      *time.Time         `json:"submitted_at,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
	CreatedAt        time.Time          `json:"created_at"`
}

type evidenceResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FileRef    string    `json:"file_ref"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type commentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Body       string    `json:"body"`
	Internal   bool      `json:"internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// toResponse shapes an application for the wire. Internal comments are
// stripped unless the caller is authority staff.
func toResponse(app application.Application, includeInternal bool) applicationResponse {
	resp := applicationResponse{
		ID:              app.ID.String(),
		ApplicantID:     app.ApplicantID.String(),
		DocumentType:    string(app.Type),
		Reason:          string(app.Reason),
		Status:          string(app.Status),
		OrganizationID:  app.OrganizationID.String(),
		Priority:        string(app.Priority),
		RejectionReason: app.RejectionReason,
		Version:         app.Version,
		SubmittedAt:     app.SubmittedAt,
		UpdatedAt:       app.UpdatedAt,
		CreatedAt:       app.CreatedAt,
	}
	if !app.AssignedTo.IsNil() {
		resp.AssignedTo = app.AssignedTo.String()
	}
	if !app.IssuedDocumentID.IsNil() {
		resp.IssuedDocumentID = app.IssuedDocumentID.String()
	}
	for _, item := range app.Evidence {
		resp.Evidence = append(resp.Evidence, evidenceResponse{
			ID:         item.ID.String(),
			Name:       item.Name,
			FileRef:    item.FileRef,
			UploadedAt: item.UploadedAt,
		})
	}
	for _, comment := range app.Comments {
		if comment.Internal && !includeInternal {
			continue
		}
		resp.Comments = append(resp.Comments, commentResponse{
			ID:         comment.ID.String(),
			AuthorID:   comment.AuthorID.String(),
			AuthorName: comment.AuthorName,
			Body:       comment.Body,
			Internal:   comment.Internal,
			CreatedAt:  comment.CreatedAt,
		})
	}
	return resp
}

func toResponses(apps []application.Application, includeInternal bool) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toResponse(app, includeInternal))
	}
	return out
}
