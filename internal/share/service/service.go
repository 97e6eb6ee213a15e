// Package service implements time-boxed document sharing: grant issuance,
// capability-token resolution, authorized access and revocation.
package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"vault/internal/audit"
	"vault/internal/document"
	"vault/internal/platform/metrics"
	"vault/internal/share"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/platform/sentinel"
	"vault/pkg/requestcontext"
)

var tracer = otel.Tracer("vault/internal/share")

// Documents is the registry slice sharing consumes. Find carries no ownership
// gate: token holders are not document owners, so the gate lives here, applied
// only where the caller is supposed to be the owner.
type Documents interface {
	Find(ctx context.Context, documentID id.DocumentID) (document.Document, error)
}

// Auditor records access events. Every authorized token access must land in
// the audit trail before the access is considered granted.
type Auditor interface {
	Record(ctx context.Context, documentID id.DocumentID, actorID, actorName string, accessType id.AccessType, sourceAddr string) (audit.Entry, error)
}

// Service owns share grants and the capability checks behind them.
type Service struct {
	store   share.Store
	docs    Documents
	files   document.FileStore
	auditor Auditor
	cache   *share.RevocationCache
	metrics *metrics.Metrics
}

func NewService(store share.Store, docs Documents, files document.FileStore, auditor Auditor, cache *share.RevocationCache, m *metrics.Metrics) *Service {
	return &Service{store: store, docs: docs, files: files, auditor: auditor, cache: cache, metrics: m}
}

// CreateRequest carries the owner's sharing intent. Permission and duration
// values arrive as raw strings and are validated here, at the trust boundary.
type CreateRequest struct {
	DocumentID  id.DocumentID
	Recipient   string
	Purpose     string
	Permissions []string
	Duration    string
}

// Create issues a new grant for a document the caller owns.
//
// Only documents whose derived status is verified can be shared; sharing a
// revoked or expired document would hand out access the registry already
// withdrew. Strangers asking to share someone else's document get NotOwner,
// which surfaces identically to the document not existing.
func (s *Service) Create(ctx context.Context, req CreateRequest) (share.Grant, error) {
	ctx, span := tracer.Start(ctx, "share.Create")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", req.DocumentID.String()))

	principal := requestcontext.PrincipalFrom(ctx)
	if principal.IsZero() {
		return share.Grant{}, dErrors.New(dErrors.CodeUnauthorized, "authenticated principal required")
	}
	if req.Recipient == "" {
		return share.Grant{}, dErrors.New(dErrors.CodeInvalidInput, "recipient is required")
	}
	permissions, err := id.ParsePermissions(req.Permissions)
	if err != nil {
		return share.Grant{}, err
	}
	duration, err := id.ParseShareDuration(req.Duration)
	if err != nil {
		return share.Grant{}, err
	}

	doc, err := s.findDocument(ctx, req.DocumentID)
	if err != nil {
		return share.Grant{}, err
	}
	if doc.OwnerID != principal.UserID {
		return share.Grant{}, dErrors.New(dErrors.CodeNotOwner, "not permitted")
	}

	now := requestcontext.Now(ctx).UTC()
	if document.EffectiveStatus(doc, now) != document.StatusVerified {
		return share.Grant{}, dErrors.New(dErrors.CodeInvalidInput, "only verified documents can be shared")
	}

	token, err := share.NewAccessToken()
	if err != nil {
		return share.Grant{}, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	grant := share.Grant{
		ID:          id.NewGrantID(),
		DocumentID:  req.DocumentID,
		GrantorID:   principal.UserID,
		Recipient:   req.Recipient,
		Purpose:     req.Purpose,
		Permissions: permissions,
		AccessToken: token,
		TokenDigest: share.TokenDigest(token),
		Status:      share.StatusActive,
		IssuedAt:    now,
		ExpiresAt:   now.Add(duration.Window()),
	}
	if err := s.store.Save(ctx, grant); err != nil {
		return share.Grant{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "grant write failed")
	}

	if _, err := s.auditor.Record(ctx, grant.DocumentID, principal.UserID.String(), principal.Name, id.AccessShare, requestcontext.ClientIP(ctx)); err != nil {
		return share.Grant{}, err
	}
	if s.metrics != nil {
		s.metrics.GrantsCreated.Inc()
	}
	return grant, nil
}

// Resolve looks a grant up by its access token and enforces liveness. Expiry
// is lazy: the first resolution past the window flips the stored status, but
// the outcome never depends on that write having happened.
func (s *Service) Resolve(ctx context.Context, accessToken string) (share.Grant, error) {
	grant, err := s.store.FindByDigest(ctx, share.TokenDigest(accessToken))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ObserveGrantResolution("not_found")
			return share.Grant{}, dErrors.New(dErrors.CodeNotFound, "share not found")
		}
		return share.Grant{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "grant lookup failed")
	}

	if s.cache.IsRevoked(ctx, grant.ID) {
		s.metrics.ObserveGrantResolution("inactive")
		return share.Grant{}, dErrors.New(dErrors.CodeGrantInactive, "share is no longer active")
	}

	now := requestcontext.Now(ctx)
	effective := share.EffectiveStatus(grant, now)
	if effective != share.StatusActive {
		if effective == share.StatusExpired && grant.Status == share.StatusActive {
			// Best effort; the derived status already decided the outcome.
			_ = s.store.UpdateStatus(ctx, grant.ID, share.StatusExpired)
		}
		s.metrics.ObserveGrantResolution("inactive")
		return share.Grant{}, dErrors.New(dErrors.CodeGrantInactive, "share is no longer active")
	}

	s.metrics.ObserveGrantResolution("ok")
	return grant, nil
}

// Authorize resolves the token, checks the requested permission, counts the
// access atomically and writes the audit entry. The audit write is part of
// the access: if it fails, the access fails.
func (s *Service) Authorize(ctx context.Context, accessToken string, permission id.Permission) (share.Grant, document.Document, error) {
	ctx, span := tracer.Start(ctx, "share.Authorize")
	defer span.End()
	span.SetAttributes(attribute.String("permission", permission.String()))

	grant, err := s.Resolve(ctx, accessToken)
	if err != nil {
		return share.Grant{}, document.Document{}, err
	}
	if !grant.Allows(permission) {
		return share.Grant{}, document.Document{}, dErrors.New(dErrors.CodeNoPermissions, "share does not carry the "+permission.String()+" permission")
	}

	doc, err := s.findDocument(ctx, grant.DocumentID)
	if err != nil {
		return share.Grant{}, document.Document{}, err
	}
	// A grant can outlive its document: revocation or expiry of the document
	// kills every token pointing at it, denied before counting or auditing.
	if document.EffectiveStatus(doc, requestcontext.Now(ctx)) != document.StatusVerified {
		return share.Grant{}, document.Document{}, dErrors.New(dErrors.CodeGrantInactive, "share is no longer active")
	}

	count, err := s.store.IncrementAccessCount(ctx, grant.ID)
	if err != nil {
		return share.Grant{}, document.Document{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "access counting failed")
	}
	grant.AccessCount = count

	if _, err := s.auditor.Record(ctx, grant.DocumentID, "recipient:"+grant.Recipient, grant.Recipient, id.ForPermission(permission), requestcontext.ClientIP(ctx)); err != nil {
		return share.Grant{}, document.Document{}, err
	}
	return grant, doc, nil
}

// Download returns the document bytes for a token carrying the download
// permission. Counting and auditing happen in Authorize.
func (s *Service) Download(ctx context.Context, accessToken string) ([]byte, document.Document, error) {
	_, doc, err := s.Authorize(ctx, accessToken, id.PermissionDownload)
	if err != nil {
		return nil, document.Document{}, err
	}
	fileBytes, err := s.files.Get(ctx, doc.FileRef)
	if err != nil {
		return nil, document.Document{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "file read failed")
	}
	return fileBytes, doc, nil
}

// Revoke withdraws a grant before its window closes. Grantor-only; a grant
// that already lapsed can still be revoked, which pins the terminal state.
func (s *Service) Revoke(ctx context.Context, grantID id.GrantID) (share.Grant, error) {
	grant, err := s.store.FindByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return share.Grant{}, dErrors.New(dErrors.CodeNotFound, "share not found")
		}
		return share.Grant{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "grant lookup failed")
	}

	principal := requestcontext.PrincipalFrom(ctx)
	if grant.GrantorID != principal.UserID {
		return share.Grant{}, dErrors.New(dErrors.CodeNotOwner, "not permitted")
	}
	if grant.Status == share.StatusRevoked {
		return share.Grant{}, dErrors.New(dErrors.CodeAlreadyRevoked, "share is already revoked")
	}

	if err := s.store.UpdateStatus(ctx, grantID, share.StatusRevoked); err != nil {
		return share.Grant{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "grant update failed")
	}
	grant.Status = share.StatusRevoked
	s.cache.MarkRevoked(ctx, grantID, grant.ExpiresAt)

	if _, err := s.auditor.Record(ctx, grant.DocumentID, principal.UserID.String(), principal.Name, id.AccessShare, requestcontext.ClientIP(ctx)); err != nil {
		return share.Grant{}, err
	}
	if s.metrics != nil {
		s.metrics.GrantsRevoked.Inc()
	}
	return grant, nil
}

// ListMine returns the caller's grants with derived statuses applied.
func (s *Service) ListMine(ctx context.Context) ([]share.Grant, error) {
	principal := requestcontext.PrincipalFrom(ctx)
	grants, err := s.store.ListByGrantor(ctx, principal.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "grant listing failed")
	}
	now := requestcontext.Now(ctx)
	for i := range grants {
		grants[i].Status = share.EffectiveStatus(grants[i], now)
	}
	return grants, nil
}

// ListByDocument returns a document's grants for its owner.
func (s *Service) ListByDocument(ctx context.Context, documentID id.DocumentID) ([]share.Grant, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	principal := requestcontext.PrincipalFrom(ctx)
	if doc.OwnerID != principal.UserID {
		return nil, dErrors.New(dErrors.CodeNotOwner, "not permitted")
	}
	grants, err := s.store.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "grant listing failed")
	}
	now := requestcontext.Now(ctx)
	for i := range grants {
		grants[i].Status = share.EffectiveStatus(grants[i], now)
	}
	return grants, nil
}

func (s *Service) findDocument(ctx context.Context, documentID id.DocumentID) (document.Document, error) {
	doc, err := s.docs.Find(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return document.Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return document.Document{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document lookup failed")
	}
	return doc, nil
}
