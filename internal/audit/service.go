package audit

import (
	"context"

	"github.com/google/uuid"

	"vault/internal/platform/metrics"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/requestcontext"
)

// Service is the single write path for access-log entries. Access without
// audit logging is not a legal code path, so callers that gate document
// access must call Record before returning data.
type Service struct {
	store     Store
	publisher *Publisher
	metrics   *metrics.Metrics
}

func NewService(store Store, publisher *Publisher, m *metrics.Metrics) *Service {
	return &Service{store: store, publisher: publisher, metrics: m}
}

// Record appends one entry. The store append is synchronous and mandatory;
// Kafka fan-out happens after and cannot fail the caller.
//
// Errors: CodeStorageUnavailable when the append cannot be persisted.
func (s *Service) Record(ctx context.Context, documentID id.DocumentID, actorID, actorName string, accessType id.AccessType, sourceAddr string) (Entry, error) {
	if actorID == "" {
		actorID = SystemActor
	}
	entry := Entry{
		ID:         uuid.New(),
		DocumentID: documentID,
		ActorID:    actorID,
		ActorName:  actorName,
		AccessType: accessType,
		SourceAddr: sourceAddr,
		UserAgent:  requestcontext.UserAgent(ctx),
		OccurredAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return Entry{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit append failed")
	}
	if s.metrics != nil {
		s.metrics.AuditAppends.Inc()
	}
	s.publisher.Publish(ctx, entry)
	return entry, nil
}

// ByDocument returns the access history for a document, newest first.
func (s *Service) ByDocument(ctx context.Context, documentID id.DocumentID) ([]Entry, error) {
	entries, err := s.store.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "audit query failed")
	}
	return entries, nil
}
