package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vault/internal/audit"
	"vault/internal/document"
	"vault/internal/ledger"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/requestcontext"
)

// approvedGate approves a fixed set of applications.
type approvedGate struct {
	approved map[id.ApplicationID]bool
}

func (g *approvedGate) IsApproved(_ context.Context, applicationID id.ApplicationID) (bool, error) {
	return g.approved[applicationID], nil
}

// recordingTxRunner executes units of work directly and counts invocations.
type recordingTxRunner struct {
	mu   sync.Mutex
	runs int
}

func (r *recordingTxRunner) Run(ctx context.Context, fn func(context.Context) error) error {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	return fn(ctx)
}

type RegistrySuite struct {
	suite.Suite
	ctx       context.Context
	store     *document.InMemoryStore
	files     *document.InMemoryFileStore
	gate      *approvedGate
	auditor   *audit.Service
	audits    *audit.InMemoryStore
	runner    *recordingTxRunner
	svc       *Service
	owner     id.UserID
	authority id.AuthorityID
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = requestcontext.WithPrincipal(context.Background(), requestcontext.Principal{
		UserID: id.NewUserID(),
		Name:   "Dana Reviewer",
		Role:   requestcontext.RoleAuthority,
	})
	s.store = document.NewInMemoryStore()
	s.files = document.NewInMemoryFileStore()
	s.gate = &approvedGate{approved: make(map[id.ApplicationID]bool)}
	s.audits = audit.NewInMemoryStore()
	s.auditor = audit.NewService(s.audits, nil, nil)
	ledgerSvc := ledger.NewService(ledger.NewInMemoryStore(), ledger.NewHashChain(), time.Second, nil)
	s.runner = &recordingTxRunner{}
	s.svc = NewService(s.store, s.files, ledgerSvc, s.gate, s.auditor, s.runner, nil)
	s.owner = id.NewUserID()
	s.authority = id.AuthorityID(id.NewUserID())
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) issue() document.Document {
	appID := id.NewApplicationID()
	s.gate.approved[appID] = true
	doc, err := s.svc.Issue(s.ctx, IssueRequest{
		ApplicationID: appID,
		OwnerID:       s.owner,
		Type:          id.DocumentTypePassport,
		AuthorityID:   s.authority,
		FileBytes:     []byte("rendered passport artifact"),
	})
	s.Require().NoError(err)
	return doc
}

func (s *RegistrySuite) TestIssueRequiresApprovedApplication() {
	_, err := s.svc.Issue(s.ctx, IssueRequest{
		ApplicationID: id.NewApplicationID(),
		OwnerID:       s.owner,
		Type:          id.DocumentTypePassport,
		AuthorityID:   s.authority,
		FileBytes:     []byte("artifact"),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeApplicationNotApproved))
}

func (s *RegistrySuite) TestIssueAnchorsAndAssignsNumber() {
	doc := s.issue()

	s.Equal(document.StatusVerified, doc.Status)
	s.NotEmpty(doc.Fingerprint)
	s.False(doc.AnchorID.IsNil())
	s.Regexp(`^PA-[0-9A-F]{12}$`, doc.DocumentNumber)

	// The stored artifact round-trips.
	content, err := s.files.Get(s.ctx, doc.FileRef)
	s.Require().NoError(err)
	s.Equal([]byte("rendered passport artifact"), content)

	// A fresh verification matches.
	result, err := s.svc.ReVerify(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.True(result.IsValid)
	s.True(result.ChainMatch)
}

func (s *RegistrySuite) TestRevokeIsTerminal() {
	doc := s.issue()

	err := s.svc.Revoke(s.ctx, doc.ID, "reported stolen")
	s.Require().NoError(err)

	stored, err := s.svc.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(document.StatusRevoked, stored.Status)
	s.Equal("reported stolen", stored.RevocationReason)

	err = s.svc.Revoke(s.ctx, doc.ID, "again")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))

	// The revocation landed in the audit trail as an admin action.
	entries, err := s.auditor.ByDocument(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(entries)
	s.Equal(id.AccessAdmin, entries[len(entries)-1].AccessType)
}

func (s *RegistrySuite) TestRevokeRequiresReason() {
	doc := s.issue()
	err := s.svc.Revoke(s.ctx, doc.ID, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *RegistrySuite) TestReVerifyDetectsTamperingAndAutoRevokes() {
	doc := s.issue()

	// Tamper with the stored bytes behind the registry's back.
	s.Require().NoError(s.files.Put(s.ctx, doc.FileRef, []byte("tampered artifact")))

	result, err := s.svc.ReVerify(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.False(result.ChainMatch)
	s.Contains(result.Warnings, "document revoked automatically")

	stored, err := s.svc.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(document.StatusRevoked, stored.Status)
}

func (s *RegistrySuite) TestRevokedDocumentNeverVerifiesValid() {
	doc := s.issue()
	s.Require().NoError(s.svc.Revoke(s.ctx, doc.ID, "court order"))

	// Bytes still match the anchor, but validity must stay false.
	result, err := s.svc.ReVerify(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.True(result.ChainMatch)
	s.False(result.IsValid)
	s.Contains(result.Warnings, "document is revoked")
}

func (s *RegistrySuite) TestExpiryIsDerivedAtReadTime() {
	appID := id.NewApplicationID()
	s.gate.approved[appID] = true
	expiry := time.Now().Add(time.Hour)
	doc, err := s.svc.Issue(s.ctx, IssueRequest{
		ApplicationID: appID,
		OwnerID:       s.owner,
		Type:          id.DocumentTypePassport,
		AuthorityID:   s.authority,
		FileBytes:     []byte("artifact"),
		ExpiryDate:    &expiry,
	})
	s.Require().NoError(err)

	current, err := s.svc.Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(document.StatusVerified, current.Status)

	// Read the same row from a context whose clock is past the expiry.
	future := requestcontext.WithTime(s.ctx, expiry.Add(time.Minute))
	expired, err := s.svc.Get(future, doc.ID)
	s.Require().NoError(err)
	s.Equal(document.StatusExpired, expired.Status)
}

func (s *RegistrySuite) TestDuplicateDocumentNumberRejected() {
	doc := s.issue()

	appID := id.NewApplicationID()
	s.gate.approved[appID] = true
	_, err := s.svc.Issue(s.ctx, IssueRequest{
		ApplicationID:  appID,
		OwnerID:        s.owner,
		Type:           id.DocumentTypePassport,
		AuthorityID:    s.authority,
		DocumentNumber: doc.DocumentNumber,
		FileBytes:      []byte("another artifact"),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *RegistrySuite) TestIssueIsIdempotentPerApplication() {
	appID := id.NewApplicationID()
	s.gate.approved[appID] = true
	req := IssueRequest{
		ApplicationID: appID,
		OwnerID:       s.owner,
		Type:          id.DocumentTypePassport,
		AuthorityID:   s.authority,
		FileBytes:     []byte("artifact"),
	}

	first, err := s.svc.Issue(s.ctx, req)
	s.Require().NoError(err)
	again, err := s.svc.Issue(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)

	docs, err := s.svc.ListByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *RegistrySuite) TestConcurrentIssueMintsOneDocument() {
	appID := id.NewApplicationID()
	s.gate.approved[appID] = true
	req := IssueRequest{
		ApplicationID: appID,
		OwnerID:       s.owner,
		Type:          id.DocumentTypePassport,
		AuthorityID:   s.authority,
		FileBytes:     []byte("artifact"),
	}

	const attempts = 8
	results := make(chan id.DocumentID, attempts)
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := s.svc.Issue(s.ctx, req)
			s.NoError(err)
			results <- doc.ID
		}()
	}
	wg.Wait()
	close(results)

	// Every racer resolves to the single winning document.
	ids := make(map[id.DocumentID]bool)
	for docID := range results {
		ids[docID] = true
	}
	s.Len(ids, 1)

	docs, err := s.svc.ListByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *RegistrySuite) TestIssueRunsInsideTransaction() {
	s.issue()
	s.Equal(1, s.runner.runs)
}

func (s *RegistrySuite) TestReconcileCleanRegistry() {
	s.issue()
	report, err := s.svc.Reconcile(s.ctx)
	s.Require().NoError(err)
	s.Empty(report.DocumentsWithoutAnchor)
	s.Empty(report.AnchorsWithoutDocument)
}

func (s *RegistrySuite) TestListByOwner() {
	doc := s.issue()
	docs, err := s.svc.ListByOwner(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(doc.ID, docs[0].ID)

	none, err := s.svc.ListByOwner(s.ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Empty(none)
}
