package handler

type createRequest struct {
	DocumentID  string   `json:"document_id"`
	Recipient   string   `json:"recipient"`
	Purpose     string   `json:"purpose,omitempty"`
	Permissions []string `json:"permissions"`
	Duration    string   `json:"duration"`
}
