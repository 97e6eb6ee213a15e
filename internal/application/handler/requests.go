package handler

// submitRequest is the citizen-facing issuance request body.
type submitRequest struct {
	DocumentType   string            `json:"document_type"`
	Reason         string            `json:"reason"`
	OrganizationID string            `json:"organization_id"`
	Priority       string            `json:"priority,omitempty"`
	Evidence       []evidenceRequest `json:"evidence,omitempty"`
}

type evidenceRequest struct {
	Name    string `json:"name"`
	FileRef string `json:"file_ref"`
}

type assignRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

type commentRequest struct {
	Comment  string `json:"comment"`
	Internal bool   `json:"internal,omitempty"`
}

type provideInfoRequest struct {
	Comment  string            `json:"comment,omitempty"`
	Evidence []evidenceRequest `json:"evidence,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}
