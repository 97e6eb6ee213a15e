package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/platform/sentinel"
	"vault/pkg/requestcontext"
)

// failingStore rejects every append.
type failingStore struct {
	*InMemoryStore
}

func (failingStore) Append(context.Context, Entry) error {
	return sentinel.ErrUnavailable
}

type AuditSuite struct {
	suite.Suite
	store *InMemoryStore
	svc   *Service
	docID id.DocumentID
}

func (s *AuditSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.svc = NewService(s.store, nil, nil)
	s.docID = id.NewDocumentID()
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) TestRecordStampsAndPersists() {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	entry, err := s.svc.Record(ctx, s.docID, "user-1", "Ayan Citizen", id.AccessView, "203.0.113.7")
	s.Require().NoError(err)
	s.NotEqual([16]byte{}, [16]byte(entry.ID))
	s.Equal(at, entry.OccurredAt)
	s.Equal("203.0.113.7", entry.SourceAddr)

	entries, err := s.svc.ByDocument(ctx, s.docID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(entry.ID, entries[0].ID)
}

func (s *AuditSuite) TestRecordCapturesClientAgent() {
	ctx := requestcontext.WithUserAgent(context.Background(), "Firefox 141.0 (Linux)")
	entry, err := s.svc.Record(ctx, s.docID, "user-1", "Ayan Citizen", id.AccessDownload, "203.0.113.7")
	s.Require().NoError(err)
	s.Equal("Firefox 141.0 (Linux)", entry.UserAgent)

	// Non-HTTP callers simply record no agent.
	entry, err = s.svc.Record(context.Background(), s.docID, "user-1", "", id.AccessView, "")
	s.Require().NoError(err)
	s.Empty(entry.UserAgent)
}

func (s *AuditSuite) TestEmptyActorBecomesSystem() {
	entry, err := s.svc.Record(context.Background(), s.docID, "", "", id.AccessVerify, "")
	s.Require().NoError(err)
	s.Equal(SystemActor, entry.ActorID)
}

func (s *AuditSuite) TestByDocumentNewestFirst() {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Minute))
		_, err := s.svc.Record(ctx, s.docID, "user-1", "Ayan Citizen", id.AccessView, "")
		s.Require().NoError(err)
	}

	entries, err := s.svc.ByDocument(context.Background(), s.docID)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(base.Add(2*time.Minute), entries[0].OccurredAt)
	s.Equal(base, entries[2].OccurredAt)
}

func (s *AuditSuite) TestByDocumentScopedToDocument() {
	_, err := s.svc.Record(context.Background(), s.docID, "user-1", "", id.AccessView, "")
	s.Require().NoError(err)
	_, err = s.svc.Record(context.Background(), id.NewDocumentID(), "user-2", "", id.AccessView, "")
	s.Require().NoError(err)

	entries, err := s.svc.ByDocument(context.Background(), s.docID)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

// TestAppendFailureSurfaces matters because document access is gated on the
// audit write: a caller that cannot log must not serve the document.
func (s *AuditSuite) TestAppendFailureSurfaces() {
	svc := NewService(failingStore{s.store}, nil, nil)
	_, err := svc.Record(context.Background(), s.docID, "user-1", "", id.AccessView, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
	s.True(dErrors.Retryable(err))
}
