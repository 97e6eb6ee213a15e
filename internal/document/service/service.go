// Package service implements the document registry: issuance on approval,
// revocation, re-verification and reconciliation against the ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"vault/internal/audit"
	"vault/internal/document"
	"vault/internal/ledger"
	"vault/internal/platform/metrics"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/platform/sentinel"
	"vault/pkg/requestcontext"
)

var tracer = otel.Tracer("vault/internal/document")

// ApplicationGate answers whether an application may be issued against.
// Implemented by an adapter over the application store so the registry stays
// ignorant of workflow internals.
type ApplicationGate interface {
	IsApproved(ctx context.Context, applicationID id.ApplicationID) (bool, error)
}

// Ledger is the slice of the fingerprint/anchor module the registry consumes.
type Ledger interface {
	Anchor(ctx context.Context, documentID id.DocumentID, fingerprint string) (ledger.Anchor, error)
	Verify(ctx context.Context, documentID id.DocumentID, recomputed string) (ledger.Verification, error)
	AnchoredDocuments(ctx context.Context) ([]id.DocumentID, error)
}

// Auditor records access events. Registry writes admin-category entries for
// revocations and verify entries for re-verification.
type Auditor interface {
	Record(ctx context.Context, documentID id.DocumentID, actorID, actorName string, accessType id.AccessType, sourceAddr string) (audit.Entry, error)
}

// TxRunner executes fn inside one storage transaction so the issuance writes
// commit or roll back together. In-memory backends run without one.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the document collection and enforces its status invariants.
type Service struct {
	store   document.Store
	files   document.FileStore
	ledger  Ledger
	apps    ApplicationGate
	auditor Auditor
	tx      TxRunner
	metrics *metrics.Metrics
}

func NewService(store document.Store, files document.FileStore, ledger Ledger, apps ApplicationGate, auditor Auditor, tx TxRunner, m *metrics.Metrics) *Service {
	return &Service{store: store, files: files, ledger: ledger, apps: apps, auditor: auditor, tx: tx, metrics: m}
}

func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.Run(ctx, fn)
}

// IssueRequest carries the issuance metadata for an approved application.
// DocumentNumber is optional; when empty the registry assigns one.
type IssueRequest struct {
	ApplicationID  id.ApplicationID
	OwnerID        id.UserID
	Type           id.DocumentType
	AuthorityID    id.AuthorityID
	DocumentNumber string
	FileBytes      []byte
	ExpiryDate     *time.Time
}

// Issue creates a verified, anchored document for an approved application.
//
// Issuance is idempotent per application: the store enforces one document per
// application, so a retried approval returns the already-issued document
// instead of minting a second one. Even when two retries race, exactly one
// insert wins and the loser resolves to the winner's document.
//
// The file write, chain anchor and document row commit together when a
// transaction runner is wired; ordering still guarantees the recoverable
// state without one: a crash between anchor and document write leaves an
// anchor without a document, which Reconcile surfaces. No path leaves a
// verified document that is missing its anchor.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (document.Document, error) {
	ctx, span := tracer.Start(ctx, "document.Issue")
	defer span.End()
	span.SetAttributes(attribute.String("application.id", req.ApplicationID.String()))

	approved, err := s.apps.IsApproved(ctx, req.ApplicationID)
	if err != nil {
		return document.Document{}, err
	}
	if !approved {
		return document.Document{}, dErrors.New(dErrors.CodeApplicationNotApproved, "application is not in approved status")
	}

	if existing, err := s.store.FindByApplication(ctx, req.ApplicationID); err == nil {
		return existing, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return document.Document{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document lookup failed")
	}

	now := requestcontext.Now(ctx).UTC()
	docID := id.NewDocumentID()
	number := req.DocumentNumber
	if number == "" {
		number = assignDocumentNumber(req.Type, docID)
	}

	payload := ledger.Payload{
		FileBytes:      req.FileBytes,
		Type:           req.Type,
		DocumentNumber: number,
		AuthorityID:    req.AuthorityID,
		IssueDate:      now,
		ExpiryDate:     req.ExpiryDate,
	}
	fingerprint, err := ledger.Fingerprint(payload)
	if err != nil {
		return document.Document{}, err
	}

	fileRef := "files/" + docID.String()
	doc := document.Document{
		ID:             docID,
		ApplicationID:  req.ApplicationID,
		OwnerID:        req.OwnerID,
		Type:           req.Type,
		DocumentNumber: number,
		AuthorityID:    req.AuthorityID,
		IssueDate:      now,
		ExpiryDate:     req.ExpiryDate,
		Status:         document.StatusVerified,
		Fingerprint:    fingerprint,
		FileRef:        fileRef,
		LastVerifiedAt: &now,
		Version:        1,
		CreatedAt:      now,
	}
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.files.Put(ctx, fileRef, req.FileBytes); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "file write failed")
		}
		anchor, err := s.ledger.Anchor(ctx, docID, fingerprint)
		if err != nil {
			return err
		}
		doc.AnchorID = anchor.ID
		return s.store.Save(ctx, doc)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost an insert race on the application, or the requested number
			// is taken. The former resolves to the winner's document.
			if existing, findErr := s.store.FindByApplication(ctx, req.ApplicationID); findErr == nil {
				return existing, nil
			}
			return document.Document{}, dErrors.New(dErrors.CodeInvalidInput, "document number already in use for this authority")
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return document.Document{}, err
		}
		return document.Document{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document write failed")
	}

	if s.metrics != nil {
		s.metrics.DocumentsIssued.Inc()
	}
	return doc, nil
}

// assignDocumentNumber derives an authority-scoped number from the document
// ID: stable, unique, and recognizable by type prefix.
func assignDocumentNumber(docType id.DocumentType, docID id.DocumentID) string {
	prefix := strings.ToUpper(string(docType[0:2]))
	compact := strings.ReplaceAll(docID.String(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(compact[:12]))
}

// Revoke transitions a document to revoked. Unconditional except from
// revoked itself: even expired documents can be revoked. Terminal: nothing
// transitions out of revoked.
func (s *Service) Revoke(ctx context.Context, documentID id.DocumentID, reason string) error {
	doc, err := s.get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status == document.StatusRevoked {
		return dErrors.New(dErrors.CodeAlreadyRevoked, "document is already revoked")
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "revocation reason cannot be empty")
	}

	doc.Status = document.StatusRevoked
	doc.RevocationReason = reason
	doc.Version++
	if err := s.store.Update(ctx, doc); err != nil {
		return translateUpdateErr(err)
	}

	principal := requestcontext.PrincipalFrom(ctx)
	if _, err := s.auditor.Record(ctx, documentID, principal.UserID.String(), principal.Name, id.AccessAdmin, requestcontext.ClientIP(ctx)); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocumentsRevoked.Inc()
	}
	return nil
}

// ReVerify recomputes the fingerprint from the currently stored bytes and
// checks it against the ledger. A mismatch is tamper evidence: the document
// is revoked automatically and the mismatch reason recorded. The mismatch
// itself is a normal result, not an error.
func (s *Service) ReVerify(ctx context.Context, documentID id.DocumentID) (document.VerificationResult, error) {
	ctx, span := tracer.Start(ctx, "document.ReVerify")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID.String()))

	doc, err := s.get(ctx, documentID)
	if err != nil {
		return document.VerificationResult{}, err
	}

	fileBytes, err := s.files.Get(ctx, doc.FileRef)
	if err != nil {
		return document.VerificationResult{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "file read failed")
	}

	recomputed, err := ledger.Fingerprint(ledger.Payload{
		FileBytes:      fileBytes,
		Type:           doc.Type,
		DocumentNumber: doc.DocumentNumber,
		AuthorityID:    doc.AuthorityID,
		IssueDate:      doc.IssueDate,
		ExpiryDate:     doc.ExpiryDate,
	})
	if err != nil {
		return document.VerificationResult{}, err
	}

	verification, err := s.ledger.Verify(ctx, documentID, recomputed)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveVerification("unavailable")
		}
		return document.VerificationResult{}, err
	}

	now := requestcontext.Now(ctx).UTC()
	result := document.VerificationResult{IsValid: verification.Match, ChainMatch: verification.Match}

	if !verification.Match {
		if s.metrics != nil {
			s.metrics.ObserveVerification("mismatch")
		}
		result.Warnings = append(result.Warnings, "fingerprint does not match ledger anchor")
		if doc.Status != document.StatusRevoked {
			doc.Status = document.StatusRevoked
			doc.RevocationReason = "fingerprint mismatch detected during re-verification"
			doc.Version++
			if err := s.store.Update(ctx, doc); err != nil {
				return document.VerificationResult{}, translateUpdateErr(err)
			}
			result.Warnings = append(result.Warnings, "document revoked automatically")
		}
	} else {
		if s.metrics != nil {
			s.metrics.ObserveVerification("match")
		}
		doc.LastVerifiedAt = &now
		doc.Version++
		if err := s.store.Update(ctx, doc); err != nil {
			return document.VerificationResult{}, translateUpdateErr(err)
		}
		if doc.Status == document.StatusRevoked {
			// The bytes still match but the document was revoked; it must
			// never re-verify as valid.
			result.IsValid = false
			result.Warnings = append(result.Warnings, "document is revoked")
		}
		if document.EffectiveStatus(doc, now) == document.StatusExpired {
			result.IsValid = false
			result.Warnings = append(result.Warnings, "document is expired")
		}
	}

	if _, err := s.auditor.Record(ctx, documentID, "", "", id.AccessVerify, requestcontext.ClientIP(ctx)); err != nil {
		return document.VerificationResult{}, err
	}
	return result, nil
}

// Get returns a document with its derived status applied.
func (s *Service) Get(ctx context.Context, documentID id.DocumentID) (document.Document, error) {
	doc, err := s.get(ctx, documentID)
	if err != nil {
		return document.Document{}, err
	}
	doc.Status = document.EffectiveStatus(doc, requestcontext.Now(ctx))
	return doc, nil
}

// ListByOwner returns the owner's documents with derived statuses applied.
func (s *Service) ListByOwner(ctx context.Context, ownerID id.UserID) ([]document.Document, error) {
	docs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document listing failed")
	}
	now := requestcontext.Now(ctx)
	for i := range docs {
		docs[i].Status = document.EffectiveStatus(docs[i], now)
	}
	return docs, nil
}

// Reconcile detects the inconsistencies a crashed issuance can leave behind:
// verified documents without an anchor reference, and anchors whose document
// row never landed.
func (s *Service) Reconcile(ctx context.Context) (document.ReconciliationReport, error) {
	var report document.ReconciliationReport

	unanchored, err := s.store.ListVerifiedUnanchored(ctx)
	if err != nil {
		return report, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "unanchored listing failed")
	}
	for _, doc := range unanchored {
		report.DocumentsWithoutAnchor = append(report.DocumentsWithoutAnchor, doc.ID)
	}

	anchoredIDs, err := s.ledger.AnchoredDocuments(ctx)
	if err != nil {
		return report, err
	}
	for _, docID := range anchoredIDs {
		if _, err := s.store.FindByID(ctx, docID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				report.AnchorsWithoutDocument = append(report.AnchorsWithoutDocument, docID)
				continue
			}
			return report, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document lookup failed")
		}
	}
	return report, nil
}

func (s *Service) get(ctx context.Context, documentID id.DocumentID) (document.Document, error) {
	doc, err := s.store.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return document.Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return document.Document{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document lookup failed")
	}
	return doc, nil
}

func translateUpdateErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrVersionConflict):
		return dErrors.New(dErrors.CodeConcurrentModification, "document was modified concurrently")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "document update failed")
	}
}
