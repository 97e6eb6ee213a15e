// Package handler exposes the document registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vault/internal/audit"
	"vault/internal/document"
	"vault/internal/document/service"
	"vault/internal/transport/http/shared"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/requestcontext"
)

// Service defines the registry operations the handler consumes.
type Service interface {
	Issue(ctx context.Context, req service.IssueRequest) (document.Document, error)
	Revoke(ctx context.Context, documentID id.DocumentID, reason string) error
	ReVerify(ctx context.Context, documentID id.DocumentID) (document.VerificationResult, error)
	Get(ctx context.Context, documentID id.DocumentID) (document.Document, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]document.Document, error)
	Reconcile(ctx context.Context) (document.ReconciliationReport, error)
}

// Auditor reads the access history for the audit-log endpoint.
type Auditor interface {
	ByDocument(ctx context.Context, documentID id.DocumentID) ([]audit.Entry, error)
}

// Handler handles document registry endpoints.
type Handler struct {
	logger    *slog.Logger
	documents Service
	auditor   Auditor
}

func New(documents Service, auditor Auditor, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, documents: documents, auditor: auditor}
}

// Register mounts the registry routes. The router is expected to already
// carry the authentication middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.handleIssue)
	r.Get("/documents", h.handleListMine)
	r.Get("/documents/reconcile", h.handleReconcile)
	r.Get("/documents/{documentID}", h.handleGet)
	r.Post("/documents/{documentID}/revoke", h.handleRevoke)
	r.Post("/documents/{documentID}/verify", h.handleVerify)
	r.Get("/documents/{documentID}/audit-log", h.handleAuditLog)
}

// handleIssue is the internal issuance path for authority integrations that
// supply their own artifact bytes. Citizen-facing issuance goes through
// application approval instead.
func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireStaff(w, ctx) {
		return
	}

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	applicationID, err := id.ParseApplicationID(req.ApplicationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ownerID, err := id.ParseUserID(req.OwnerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	authorityID, err := id.ParseAuthorityID(req.AuthorityID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	docType, err := id.ParseDocumentType(req.DocumentType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	doc, err := h.documents.Issue(ctx, service.IssueRequest{
		ApplicationID:  applicationID,
		OwnerID:        ownerID,
		Type:           docType,
		AuthorityID:    authorityID,
		DocumentNumber: req.DocumentNumber,
		FileBytes:      req.FileContent,
		ExpiryDate:     req.ExpiryDate,
	})
	if err != nil {
		h.logWarn(ctx, "document issuance failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(doc))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := requestcontext.PrincipalFrom(ctx)
	docs, err := h.documents.ListByOwner(ctx, principal.UserID)
	if err != nil {
		h.logWarn(ctx, "document listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(docs))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.documents.Get(ctx, documentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	principal := requestcontext.PrincipalFrom(ctx)
	if doc.OwnerID != principal.UserID && !isStaff(principal) {
		shared.WriteNotFound(w)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(doc))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireStaff(w, ctx) {
		return
	}
	documentID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.documents.Revoke(ctx, documentID, req.Reason); err != nil {
		h.logWarn(ctx, "document revocation failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if !h.canAccess(w, ctx, documentID) {
		return
	}
	result, err := h.documents.ReVerify(ctx, documentID)
	if err != nil {
		h.logWarn(ctx, "document verification failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, verificationResponse{
		IsValid:    result.IsValid,
		ChainMatch: result.ChainMatch,
		Warnings:   result.Warnings,
	})
}

func (h *Handler) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if !h.canAccess(w, ctx, documentID) {
		return
	}
	entries, err := h.auditor.ByDocument(ctx, documentID)
	if err != nil {
		h.logWarn(ctx, "audit log read failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toAuditResponses(entries))
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.PrincipalFrom(ctx).Role != requestcontext.RoleAdmin {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin role required"))
		return
	}
	report, err := h.documents.Reconcile(ctx)
	if err != nil {
		h.logWarn(ctx, "reconciliation failed", err)
		shared.WriteError(w, err)
		return
	}
	resp := reconciliationResponse{
		DocumentsWithoutAnchor: make([]string, 0, len(report.DocumentsWithoutAnchor)),
		AnchorsWithoutDocument: make([]string, 0, len(report.AnchorsWithoutDocument)),
	}
	for _, docID := range report.DocumentsWithoutAnchor {
		resp.DocumentsWithoutAnchor = append(resp.DocumentsWithoutAnchor, docID.String())
	}
	for _, docID := range report.AnchorsWithoutDocument {
		resp.AnchorsWithoutDocument = append(resp.AnchorsWithoutDocument, docID.String())
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

// canAccess enforces owner-or-staff on a document without confirming its
// existence to strangers.
func (h *Handler) canAccess(w http.ResponseWriter, ctx context.Context, documentID id.DocumentID) bool {
	doc, err := h.documents.Get(ctx, documentID)
	if err != nil {
		shared.WriteError(w, err)
		return false
	}
	principal := requestcontext.PrincipalFrom(ctx)
	if doc.OwnerID != principal.UserID && !isStaff(principal) {
		shared.WriteNotFound(w)
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (id.DocumentID, bool) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		shared.WriteError(w, err)
		return id.DocumentID{}, false
	}
	return documentID, true
}

func (h *Handler) requireStaff(w http.ResponseWriter, ctx context.Context) bool {
	if !isStaff(requestcontext.PrincipalFrom(ctx)) {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authority role required"))
		return false
	}
	return true
}

func isStaff(p requestcontext.Principal) bool {
	return p.Role.IsStaff()
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
