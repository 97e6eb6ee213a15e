// Package handler exposes sharing over HTTP: grant management for owners and
// the public capability-token surface for recipients.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vault/internal/document"
	"vault/internal/share"
	"vault/internal/share/service"
	"vault/internal/transport/http/shared"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/share-mocks.go -package=mocks Service Verifier

// Service defines the sharing operations the handler consumes.
type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (share.Grant, error)
	Authorize(ctx context.Context, accessToken string, permission id.Permission) (share.Grant, document.Document, error)
	Download(ctx context.Context, accessToken string) ([]byte, document.Document, error)
	Revoke(ctx context.Context, grantID id.GrantID) (share.Grant, error)
	ListMine(ctx context.Context) ([]share.Grant, error)
	ListByDocument(ctx context.Context, documentID id.DocumentID) ([]share.Grant, error)
}

// Verifier re-checks a shared document against the ledger.
type Verifier interface {
	ReVerify(ctx context.Context, documentID id.DocumentID) (document.VerificationResult, error)
}

// Handler handles share-grant endpoints.
type Handler struct {
	logger   *slog.Logger
	shares   Service
	verifier Verifier
}

func New(shares Service, verifier Verifier, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, shares: shares, verifier: verifier}
}

// Register mounts the owner-facing routes. The router is expected to already
// carry the authentication middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/shares", h.handleCreate)
	r.Get("/shares", h.handleList)
	r.Post("/shares/{grantID}/revoke", h.handleRevoke)
}

// RegisterPublic mounts the token-bearing routes. No authentication: the
// access token is the credential.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/verify/{accessToken}", h.handleVerify)
	r.Get("/shared/{accessToken}", h.handleView)
	r.Get("/shared/{accessToken}/download", h.handleDownload)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	documentID, err := id.ParseDocumentID(req.DocumentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	grant, err := h.shares.Create(ctx, service.CreateRequest{
		DocumentID:  documentID,
		Recipient:   req.Recipient,
		Purpose:     req.Purpose,
		Permissions: req.Permissions,
		Duration:    req.Duration,
	})
	if err != nil {
		h.logWarn(ctx, "share creation failed", err)
		shared.WriteError(w, err)
		return
	}
	// The only response that ever carries the access token.
	shared.WriteJSON(w, http.StatusCreated, toResponse(grant, true))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		grants []share.Grant
		err    error
	)
	if raw := r.URL.Query().Get("document_id"); raw != "" {
		var documentID id.DocumentID
		documentID, err = id.ParseDocumentID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		grants, err = h.shares.ListByDocument(ctx, documentID)
	} else {
		grants, err = h.shares.ListMine(ctx)
	}
	if err != nil {
		h.logWarn(ctx, "share listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(grants))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	grantID, err := id.ParseGrantID(chi.URLParam(r, "grantID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	grant, err := h.shares.Revoke(ctx, grantID)
	if err != nil {
		h.logWarn(ctx, "share revocation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(grant, false))
}

// handleVerify runs a full ledger verification on behalf of a token holder
// with the verify permission.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	grant, doc, err := h.shares.Authorize(ctx, chi.URLParam(r, "accessToken"), id.PermissionVerify)
	if err != nil {
		h.writePublicError(w, ctx, err)
		return
	}
	result, err := h.verifier.ReVerify(ctx, doc.ID)
	if err != nil {
		h.logWarn(ctx, "shared verification failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, verifyResponse{
		Document:   toSharedResponse(grant, doc),
		IsValid:    result.IsValid,
		ChainMatch: result.ChainMatch,
		Warnings:   result.Warnings,
	})
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	grant, doc, err := h.shares.Authorize(ctx, chi.URLParam(r, "accessToken"), id.PermissionView)
	if err != nil {
		h.writePublicError(w, ctx, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toSharedResponse(grant, doc))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fileBytes, doc, err := h.shares.Download(ctx, chi.URLParam(r, "accessToken"))
	if err != nil {
		h.writePublicError(w, ctx, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.DocumentNumber+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fileBytes)
}

// writePublicError collapses every denial a token holder can trigger into an
// anonymous 404. Unknown token, revoked grant, expired grant and missing
// permission all read the same from outside.
func (h *Handler) writePublicError(w http.ResponseWriter, ctx context.Context, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeGrantInactive, dErrors.CodeNoPermissions, dErrors.CodeNotOwner:
		h.logger.InfoContext(ctx, "shared access denied",
			"reason", string(dErrors.CodeOf(err)),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteNotFound(w)
	default:
		h.logWarn(ctx, "shared access failed", err)
		shared.WriteError(w, err)
	}
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
