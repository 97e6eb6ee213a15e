//go:build integration

package document_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vault/internal/document"
	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
	"vault/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *document.PostgresStore
	files    *document.PostgresFileStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = document.NewPostgresStore(s.postgres.DB)
	s.files = document.NewPostgresFileStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "document_files", "documents")
	s.Require().NoError(err)
}

func newTestDocument(number string) document.Document {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return document.Document{
		ID:             id.NewDocumentID(),
		ApplicationID:  id.NewApplicationID(),
		OwnerID:        id.NewUserID(),
		Type:           id.DocumentTypePassport,
		DocumentNumber: number,
		AuthorityID:    id.AuthorityID(id.NewUserID()),
		IssueDate:      now,
		Status:         document.StatusVerified,
		Fingerprint:    "fp-" + number,
		AnchorID:       id.NewAnchorID(),
		FileRef:        "files/" + number,
		Version:        1,
		CreatedAt:      now,
	}
}

func (s *PostgresStoreSuite) TestSaveAndFindRoundTrip() {
	ctx := context.Background()
	doc := newTestDocument("PA-000000000001")
	s.Require().NoError(s.store.Save(ctx, doc))

	found, err := s.store.FindByID(ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(doc.DocumentNumber, found.DocumentNumber)
	s.Equal(doc.Fingerprint, found.Fingerprint)
	s.Equal(doc.AnchorID, found.AnchorID)
	s.Equal(doc.Status, found.Status)
	s.EqualValues(1, found.Version)
}

func (s *PostgresStoreSuite) TestDuplicateNumberSameAuthorityConflicts() {
	ctx := context.Background()
	doc := newTestDocument("PA-000000000002")
	s.Require().NoError(s.store.Save(ctx, doc))

	dup := newTestDocument("PA-000000000002")
	dup.AuthorityID = doc.AuthorityID
	err := s.store.Save(ctx, dup)
	s.ErrorIs(err, sentinel.ErrConflict)

	// The same number under a different authority is fine.
	other := newTestDocument("PA-000000000002")
	s.NoError(s.store.Save(ctx, other))
}

func (s *PostgresStoreSuite) TestOneDocumentPerApplication() {
	ctx := context.Background()
	doc := newTestDocument("PA-000000000009")
	s.Require().NoError(s.store.Save(ctx, doc))

	// A second insert for the same application conflicts even with a fresh
	// document number.
	dup := newTestDocument("PA-000000000010")
	dup.ApplicationID = doc.ApplicationID
	err := s.store.Save(ctx, dup)
	s.ErrorIs(err, sentinel.ErrConflict)

	found, err := s.store.FindByApplication(ctx, doc.ApplicationID)
	s.Require().NoError(err)
	s.Equal(doc.ID, found.ID)

	_, err = s.store.FindByApplication(ctx, id.NewApplicationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentUpdateSingleWinner() {
	ctx := context.Background()
	doc := newTestDocument("PA-000000000003")
	s.Require().NoError(s.store.Save(ctx, doc))

	const goroutines = 20
	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updated := doc
			updated.Status = document.StatusRevoked
			updated.RevocationReason = "reported stolen"
			updated.Version = doc.Version + 1
			switch err := s.store.Update(ctx, updated); {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrVersionConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load(), "exactly one version bump should land")
	s.Equal(int32(goroutines-1), conflicts.Load())

	found, err := s.store.FindByID(ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(document.StatusRevoked, found.Status)
	s.EqualValues(2, found.Version)
}

func (s *PostgresStoreSuite) TestUpdateMissingDocument() {
	ghost := newTestDocument("PA-000000000004")
	ghost.Version = 2
	err := s.store.Update(context.Background(), ghost)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByOwnerNewestFirst() {
	ctx := context.Background()
	owner := id.NewUserID()
	for i, number := range []string{"PA-000000000005", "PA-000000000006"} {
		doc := newTestDocument(number)
		doc.OwnerID = owner
		doc.CreatedAt = doc.CreatedAt.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.Save(ctx, doc))
	}

	docs, err := s.store.ListByOwner(ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("PA-000000000006", docs[0].DocumentNumber)

	none, err := s.store.ListByOwner(ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *PostgresStoreSuite) TestListVerifiedUnanchored() {
	ctx := context.Background()
	anchored := newTestDocument("PA-000000000007")
	s.Require().NoError(s.store.Save(ctx, anchored))

	orphan := newTestDocument("PA-000000000008")
	orphan.AnchorID = id.AnchorID{}
	s.Require().NoError(s.store.Save(ctx, orphan))

	docs, err := s.store.ListVerifiedUnanchored(ctx)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(orphan.ID, docs[0].ID)
}

func (s *PostgresStoreSuite) TestFileStoreRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.files.Put(ctx, "files/roundtrip", []byte("artifact bytes")))

	content, err := s.files.Get(ctx, "files/roundtrip")
	s.Require().NoError(err)
	s.Equal([]byte("artifact bytes"), content)

	// Put is an upsert: re-writing the same ref replaces the content.
	s.Require().NoError(s.files.Put(ctx, "files/roundtrip", []byte("replaced")))
	content, err = s.files.Get(ctx, "files/roundtrip")
	s.Require().NoError(err)
	s.Equal([]byte("replaced"), content)

	_, err = s.files.Get(ctx, "files/missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
