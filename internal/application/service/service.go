// Package service drives the application workflow state machine. Every
// transition validates the current state, takes an optimistic version bump,
// and loses cleanly with ConcurrentModification when two reviewers race.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"vault/internal/application"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/platform/sentinel"
	"vault/pkg/requestcontext"
)

// Issuer is the registry port consumed on approval. The workflow engine
// stays ignorant of fingerprinting and ledger details; it only learns the
// resulting document ID.
type Issuer interface {
	Issue(ctx context.Context, app application.Application) (id.DocumentID, error)
}

// Service orchestrates application lifecycle operations.
type Service struct {
	store  application.Store
	issuer Issuer
}

func NewService(store application.Store, issuer Issuer) *Service {
	return &Service{store: store, issuer: issuer}
}

// SubmitRequest carries a citizen's issuance request.
type SubmitRequest struct {
	Type           id.DocumentType
	Reason         id.ApplicationReason
	OrganizationID id.AuthorityID
	Priority       id.Priority
	Evidence       []application.Evidence
}

// Submit creates an application and moves it draft → submitted in one step.
//
// Errors: CodeIncompleteApplication when type, reason or target organization
// is missing.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (application.Application, error) {
	principal := requestcontext.PrincipalFrom(ctx)
	if principal.IsZero() {
		return application.Application{}, dErrors.New(dErrors.CodeUnauthorized, "authenticated principal required")
	}
	if !req.Type.IsValid() {
		return application.Application{}, dErrors.New(dErrors.CodeIncompleteApplication, "document type is required")
	}
	if req.Reason == "" {
		return application.Application{}, dErrors.New(dErrors.CodeIncompleteApplication, "application reason is required")
	}
	if req.OrganizationID.IsNil() {
		return application.Application{}, dErrors.New(dErrors.CodeIncompleteApplication, "target organization is required")
	}
	priority := req.Priority
	if priority == "" {
		priority = id.PriorityMedium
	}

	now := requestcontext.Now(ctx).UTC()
	app := application.Application{
		ID:             id.NewApplicationID(),
		ApplicantID:    principal.UserID,
		Type:           req.Type,
		Reason:         req.Reason,
		Status:         application.StatusSubmitted,
		OrganizationID: req.OrganizationID,
		Priority:       priority,
		Evidence:       req.Evidence,
		Version:        1,
		SubmittedAt:    &now,
		UpdatedAt:      now,
		CreatedAt:      now,
	}
	if err := s.store.Save(ctx, app); err != nil {
		return application.Application{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "application write failed")
	}
	return app, nil
}

// AssignReviewer moves submitted → under_review and records the reviewer.
func (s *Service) AssignReviewer(ctx context.Context, applicationID id.ApplicationID, reviewerID id.UserID) (application.Application, error) {
	return s.transition(ctx, applicationID, application.StatusUnderReview, func(app *application.Application) error {
		if reviewerID.IsNil() {
			return dErrors.New(dErrors.CodeInvalidInput, "reviewer id is required")
		}
		app.AssignedTo = reviewerID
		return nil
	})
}

// RequestMoreInfo moves under_review → additional_info_required. The comment
// is mandatory: the citizen must learn what is missing.
func (s *Service) RequestMoreInfo(ctx context.Context, applicationID id.ApplicationID, comment string) (application.Application, error) {
	if comment == "" {
		return application.Application{}, dErrors.New(dErrors.CodeInvalidInput, "a comment explaining the required information is mandatory")
	}
	app, err := s.transition(ctx, applicationID, application.StatusInfoRequired, nil)
	if err != nil {
		return application.Application{}, err
	}
	return s.appendComment(ctx, app, comment, true)
}

// ProvideInfo lets the applicant answer an information request, moving
// additional_info_required back to under_review.
func (s *Service) ProvideInfo(ctx context.Context, applicationID id.ApplicationID, comment string, evidence []application.Evidence) (application.Application, error) {
	principal := requestcontext.PrincipalFrom(ctx)
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if app.ApplicantID != principal.UserID {
		return application.Application{}, dErrors.New(dErrors.CodeNotOwner, "not permitted")
	}

	app, err = s.transition(ctx, applicationID, application.StatusUnderReview, nil)
	if err != nil {
		return application.Application{}, err
	}
	for _, item := range evidence {
		if err := s.store.AppendEvidence(ctx, applicationID, item); err != nil {
			return application.Application{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "evidence write failed")
		}
		app.Evidence = append(app.Evidence, item)
	}
	if comment == "" {
		return app, nil
	}
	return s.appendComment(ctx, app, comment, false)
}

// Approve moves under_review → approved, then asks the registry to issue.
// Issuance success completes approved → issued and backfills the document
// reference. Issuance failure leaves the application approved; the error is
// retryable and a retry re-enters at the issuance step.
func (s *Service) Approve(ctx context.Context, applicationID id.ApplicationID, reviewerID id.UserID) (application.Application, error) {
	if reviewerID.IsNil() {
		return application.Application{}, dErrors.New(dErrors.CodeInvalidInput, "reviewer id is required")
	}
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if app.Status != application.StatusApproved {
		// A retry after a failed issuance finds the application already
		// approved and re-enters at the issuance step.
		app, err = s.transition(ctx, applicationID, application.StatusApproved, func(app *application.Application) error {
			app.AssignedTo = reviewerID
			return nil
		})
		if err != nil {
			return application.Application{}, err
		}
	}

	documentID, err := s.issuer.Issue(ctx, app)
	if err != nil {
		return application.Application{}, err
	}

	return s.transition(ctx, applicationID, application.StatusIssued, func(app *application.Application) error {
		app.IssuedDocumentID = documentID
		return nil
	})
}

// Reject moves under_review → rejected. A non-empty reason is mandatory;
// rejection without justification is disallowed.
func (s *Service) Reject(ctx context.Context, applicationID id.ApplicationID, reviewerID id.UserID, reason string) (application.Application, error) {
	if reason == "" {
		return application.Application{}, dErrors.New(dErrors.CodeInvalidInput, "rejection reason cannot be empty")
	}
	app, err := s.transition(ctx, applicationID, application.StatusRejected, func(app *application.Application) error {
		app.AssignedTo = reviewerID
		app.RejectionReason = reason
		return nil
	})
	if err != nil {
		return application.Application{}, err
	}
	return s.appendComment(ctx, app, reason, false)
}

// Cancel is citizen-initiated and only legal before approval.
func (s *Service) Cancel(ctx context.Context, applicationID id.ApplicationID) (application.Application, error) {
	principal := requestcontext.PrincipalFrom(ctx)
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if app.ApplicantID != principal.UserID {
		return application.Application{}, dErrors.New(dErrors.CodeNotOwner, "not permitted")
	}
	return s.transition(ctx, applicationID, application.StatusCancelled, nil)
}

// AddComment appends to the communication thread without a state change.
// Only the applicant and authority staff may write to the thread.
func (s *Service) AddComment(ctx context.Context, applicationID id.ApplicationID, body string, internal bool) (application.Application, error) {
	if body == "" {
		return application.Application{}, dErrors.New(dErrors.CodeInvalidInput, "comment body cannot be empty")
	}
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	principal := requestcontext.PrincipalFrom(ctx)
	if app.ApplicantID != principal.UserID && !principal.Role.IsStaff() {
		return application.Application{}, dErrors.New(dErrors.CodeNotOwner, "not permitted")
	}
	if app.Status.IsTerminal() {
		return application.Application{}, dErrors.New(dErrors.CodeInvalidTransition, "application is terminal; history is immutable")
	}
	return s.appendComment(ctx, app, body, internal)
}

// Get returns one application.
func (s *Service) Get(ctx context.Context, applicationID id.ApplicationID) (application.Application, error) {
	return s.get(ctx, applicationID)
}

// ListMine returns the caller's applications.
func (s *Service) ListMine(ctx context.Context) ([]application.Application, error) {
	principal := requestcontext.PrincipalFrom(ctx)
	apps, err := s.store.ListByApplicant(ctx, principal.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "application listing failed")
	}
	return apps, nil
}

// Queue returns applications in one workflow state, oldest first, for
// reviewer work queues.
func (s *Service) Queue(ctx context.Context, status application.Status) ([]application.Application, error) {
	apps, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "application listing failed")
	}
	return apps, nil
}

// transition loads, validates the state machine, applies mutate, bumps the
// version and writes. A lost version race surfaces as ConcurrentModification
// so the caller re-reads and retries.
func (s *Service) transition(ctx context.Context, applicationID id.ApplicationID, to application.Status, mutate func(*application.Application) error) (application.Application, error) {
	app, err := s.get(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if err := application.EnsureTransition(app.Status, to); err != nil {
		return application.Application{}, err
	}
	if mutate != nil {
		if err := mutate(&app); err != nil {
			return application.Application{}, err
		}
	}

	app.Status = to
	app.UpdatedAt = requestcontext.Now(ctx).UTC()
	app.Version++
	if err := s.store.Update(ctx, app); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrVersionConflict):
			return application.Application{}, dErrors.New(dErrors.CodeConcurrentModification, "application was modified concurrently; re-read and retry")
		case errors.Is(err, sentinel.ErrNotFound):
			return application.Application{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		default:
			return application.Application{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "application update failed")
		}
	}
	return app, nil
}

func (s *Service) appendComment(ctx context.Context, app application.Application, body string, internal bool) (application.Application, error) {
	principal := requestcontext.PrincipalFrom(ctx)
	comment := application.Comment{
		ID:         uuid.New(),
		AuthorID:   principal.UserID,
		AuthorName: principal.Name,
		Body:       body,
		Internal:   internal,
		CreatedAt:  requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.AppendComment(ctx, app.ID, comment); err != nil {
		return application.Application{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "comment write failed")
	}
	app.Comments = append(app.Comments, comment)
	return app, nil
}

func (s *Service) get(ctx context.Context, applicationID id.ApplicationID) (application.Application, error) {
	app, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return application.Application{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return application.Application{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "application lookup failed")
	}
	return app, nil
}
