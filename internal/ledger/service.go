package ledger

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"vault/internal/platform/metrics"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/platform/sentinel"
	"vault/pkg/requestcontext"
)

var tracer = otel.Tracer("vault/internal/ledger")

// Service anchors fingerprints and verifies them against the chain.
type Service struct {
	store        Store
	chain        Chain
	chainTimeout time.Duration
	metrics      *metrics.Metrics
}

// NewService wires the anchor store and chain collaborator. chainTimeout
// bounds every chain call; on expiry the operation fails as LedgerUnavailable
// rather than hanging.
func NewService(store Store, chain Chain, chainTimeout time.Duration, m *metrics.Metrics) *Service {
	if chainTimeout <= 0 {
		chainTimeout = 5 * time.Second
	}
	return &Service{store: store, chain: chain, chainTimeout: chainTimeout, metrics: m}
}

// Anchor commits a fingerprint for a document. Write-once: a second call for
// the same document fails with CodeAlreadyAnchored regardless of fingerprint.
//
// Ordering: the chain submit happens first, the store write second. A store
// failure after a successful submit leaves an orphan chain entry but no
// half-anchored document; the reconciliation pass in the registry surfaces
// documents whose anchor write was lost.
func (s *Service) Anchor(ctx context.Context, documentID id.DocumentID, fingerprint string) (Anchor, error) {
	ctx, span := tracer.Start(ctx, "ledger.Anchor")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID.String()))

	if fingerprint == "" {
		return Anchor{}, dErrors.New(dErrors.CodeInvalidPayload, "fingerprint cannot be empty")
	}

	if _, err := s.store.FindByDocument(ctx, documentID); err == nil {
		return Anchor{}, dErrors.New(dErrors.CodeAlreadyAnchored, "document already has an anchor")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Anchor{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "anchor lookup failed")
	}

	chainRef, err := s.submit(ctx, fingerprint)
	if err != nil {
		return Anchor{}, err
	}

	anchor := Anchor{
		ID:          id.NewAnchorID(),
		DocumentID:  documentID,
		Fingerprint: fingerprint,
		ChainRef:    chainRef,
		AnchoredAt:  requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Save(ctx, anchor); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// A concurrent issuance won the race; the unique constraint is
			// the authority here, not the lookup above.
			return Anchor{}, dErrors.New(dErrors.CodeAlreadyAnchored, "document already has an anchor")
		}
		return Anchor{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "anchor write failed")
	}
	return anchor, nil
}

func (s *Service) submit(ctx context.Context, fingerprint string) (string, error) {
	submitCtx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	defer cancel()

	start := time.Now()
	chainRef, err := s.chain.Submit(submitCtx, fingerprint)
	if s.metrics != nil {
		s.metrics.LedgerSubmitSecs.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "chain submit failed")
	}
	return chainRef, nil
}

// Verify checks a recomputed fingerprint against the document's anchor.
// A mismatch is a normal Match=false result; only a missing anchor or an
// unreachable chain is an error. The service never mutates document state.
func (s *Service) Verify(ctx context.Context, documentID id.DocumentID, recomputed string) (Verification, error) {
	ctx, span := tracer.Start(ctx, "ledger.Verify")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID.String()))

	anchor, err := s.store.FindByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Verification{}, dErrors.New(dErrors.CodeNotAnchored, "document has no ledger anchor")
		}
		return Verification{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "anchor lookup failed")
	}

	// Cross-check the chain copy so a tampered anchor row is also caught.
	lookupCtx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	defer cancel()
	chainFingerprint, err := s.chain.Lookup(lookupCtx, anchor.ChainRef)
	if err != nil {
		return Verification{}, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "chain lookup failed")
	}

	match := recomputed == anchor.Fingerprint && chainFingerprint == anchor.Fingerprint
	return Verification{Match: match, Anchor: anchor}, nil
}

// AnchoredDocuments lists every anchored document ID, for reconciliation.
func (s *Service) AnchoredDocuments(ctx context.Context) ([]id.DocumentID, error) {
	ids, err := s.store.ListDocumentIDs(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "anchored document listing failed")
	}
	return ids, nil
}
