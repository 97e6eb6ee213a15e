// Package handler exposes the application workflow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vault/internal/application"
	"vault/internal/application/service"
	"vault/internal/transport/http/shared"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/requestcontext"
)

// Service defines the workflow operations the handler consumes.
type Service interface {
	Submit(ctx context.Context, req service.SubmitRequest) (application.Application, error)
	AssignReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.UserID) (application.Application, error)
	RequestMoreInfo(ctx context.Context, applicationID id.ApplicationID, comment string) (application.Application, error)
	ProvideInfo(ctx context.Context, applicationID id.ApplicationID, comment string, evidence []application.Evidence) (application.Application, error)
	Approve(ctx context.Context, applicationID id.ApplicationID, reviewerID id.UserID) (application.Application, error)
	Reject(ctx context.Context, applicationID id.ApplicationID, reviewerID id.UserID, reason string) (application.Application, error)
	Cancel(ctx context.Context, applicationID id.ApplicationID) (application.Application, error)
	AddComment(ctx context.Context, applicationID id.ApplicationID, body string, internal bool) (application.Application, error)
	Get(ctx context.Context, applicationID id.ApplicationID) (application.Application, error)
	ListMine(ctx context.Context) ([]application.Application, error)
	Queue(ctx context.Context, status application.Status) ([]application.Application, error)
}

// Handler handles application workflow endpoints.
type Handler struct {
	logger       *slog.Logger
	applications Service
}

func New(applications Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, applications: applications}
}

// Register mounts the workflow routes. The router is expected to already
// carry the authentication middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.handleSubmit)
	r.Get("/applications", h.handleListMine)
	r.Get("/applications/queue", h.handleQueue)
	r.Get("/applications/{applicationID}", h.handleGet)
	r.Post("/applications/{applicationID}/assign", h.handleAssign)
	r.Post("/applications/{applicationID}/request-info", h.handleRequestInfo)
	r.Post("/applications/{applicationID}/provide-info", h.handleProvideInfo)
	r.Post("/applications/{applicationID}/approve", h.handleApprove)
	r.Post("/applications/{applicationID}/reject", h.handleReject)
	r.Post("/applications/{applicationID}/cancel", h.handleCancel)
	r.Post("/applications/{applicationID}/comments", h.handleAddComment)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	orgID, err := id.ParseAuthorityID(req.OrganizationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	now := requestcontext.Now(ctx).UTC()
	evidence := make([]application.Evidence, 0, len(req.Evidence))
	for _, item := range req.Evidence {
		evidence = append(evidence, application.Evidence{
			ID:         uuid.New(),
			Name:       item.Name,
			FileRef:    item.FileRef,
			UploadedAt: now,
		})
	}

	app, err := h.applications.Submit(ctx, service.SubmitRequest{
		Type:           id.DocumentType(req.DocumentType),
		Reason:         id.ApplicationReason(req.Reason),
		OrganizationID: orgID,
		Priority:       id.Priority(req.Priority),
		Evidence:       evidence,
	})
	if err != nil {
		h.logWarn(ctx, "application submit failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(app, false))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	apps, err := h.applications.ListMine(ctx)
	if err != nil {
		h.logWarn(ctx, "application listing failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(apps, false))
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireStaff(w, ctx) {
		return
	}
	status := application.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = application.StatusSubmitted
	}
	apps, err := h.applications.Queue(ctx, status)
	if err != nil {
		h.logWarn(ctx, "application queue failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(apps, true))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	app, err := h.applications.Get(ctx, applicationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	principal := requestcontext.PrincipalFrom(ctx)
	staff := isStaff(principal)
	if app.ApplicantID != principal.UserID && !staff {
		// Indistinguishable from the application not existing.
		shared.WriteNotFound(w)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, staff))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireStaff(w, ctx) {
		return
	}
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	reviewerID := requestcontext.PrincipalFrom(ctx).UserID
	if req.ReviewerID != "" {
		parsed, err := id.ParseUserID(req.ReviewerID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		reviewerID = parsed
	}

	app, err := h.applications.AssignReviewer(ctx, applicationID, reviewerID)
	if err != nil {
		h.logWarn(ctx, "reviewer assignment failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, true))
}

func (h *Handler) handleRequestInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireStaff(w, ctx) {
		return
	}
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	app, err := h.applications.RequestMoreInfo(ctx, applicationID, req.Comment)
	if err != nil {
		h.logWarn(ctx, "information request failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, true))
}

func (h *Handler) handleProvideInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req provideInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	now := requestcontext.Now(ctx).UTC()
	evidence := make([]application.Evidence, 0, len(req.Evidence))
	for _, item := range req.Evidence {
		evidence = append(evidence, application.Evidence{
			ID:         uuid.New(),
			Name:       item.Name,
			FileRef:    item.FileRef,
			UploadedAt: now,
		})
	}

	app, err := h.applications.ProvideInfo(ctx, applicationID, req.Comment, evidence)
	if err != nil {
		h.logWarn(ctx, "information response failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, false))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireStaff(w, ctx) {
		return
	}
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	app, err := h.applications.Approve(ctx, applicationID, requestcontext.PrincipalFrom(ctx).UserID)
	if err != nil {
		h.logWarn(ctx, "application approval failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, true))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireStaff(w, ctx) {
		return
	}
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	app, err := h.applications.Reject(ctx, applicationID, requestcontext.PrincipalFrom(ctx).UserID, req.Reason)
	if err != nil {
		h.logWarn(ctx, "application rejection failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, true))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	app, err := h.applications.Cancel(ctx, applicationID)
	if err != nil {
		h.logWarn(ctx, "application cancellation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, false))
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicationID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	staff := isStaff(requestcontext.PrincipalFrom(ctx))
	internal := req.Internal && staff

	app, err := h.applications.AddComment(ctx, applicationID, req.Comment, internal)
	if err != nil {
		h.logWarn(ctx, "comment append failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app, staff))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (id.ApplicationID, bool) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return id.ApplicationID{}, false
	}
	return applicationID, true
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
