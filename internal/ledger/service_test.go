package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
)

func mustUUID(s string) uuid.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

type LedgerServiceSuite struct {
	suite.Suite
	ctx   context.Context
	chain *HashChain
	svc   *Service
}

func (s *LedgerServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.chain = NewHashChain()
	s.svc = NewService(NewInMemoryStore(), s.chain, time.Second, nil)
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) TestAnchorIsWriteOnce() {
	docID := id.NewDocumentID()

	anchor, err := s.svc.Anchor(s.ctx, docID, "fp-1")
	s.Require().NoError(err)
	s.Equal("fp-1", anchor.Fingerprint)
	s.NotEmpty(anchor.ChainRef)

	// Second anchor fails even with a different fingerprint.
	_, err = s.svc.Anchor(s.ctx, docID, "fp-2")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyAnchored))

	// The original anchor is untouched.
	verification, err := s.svc.Verify(s.ctx, docID, "fp-1")
	s.Require().NoError(err)
	s.True(verification.Match)
	s.Equal(anchor.ID, verification.Anchor.ID)
}

func (s *LedgerServiceSuite) TestAnchorRejectsEmptyFingerprint() {
	_, err := s.svc.Anchor(s.ctx, id.NewDocumentID(), "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidPayload))
}

func (s *LedgerServiceSuite) TestVerifyMismatchIsResultNotError() {
	docID := id.NewDocumentID()
	_, err := s.svc.Anchor(s.ctx, docID, "fp-original")
	s.Require().NoError(err)

	verification, err := s.svc.Verify(s.ctx, docID, "fp-tampered")
	s.Require().NoError(err)
	s.False(verification.Match)
}

func (s *LedgerServiceSuite) TestVerifyUnanchoredDocument() {
	_, err := s.svc.Verify(s.ctx, id.NewDocumentID(), "fp")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAnchored))
}

func (s *LedgerServiceSuite) TestChainRefsDependOnHistory() {
	refA, err := s.chain.Submit(s.ctx, "fp-a")
	s.Require().NoError(err)
	refB, err := s.chain.Submit(s.ctx, "fp-b")
	s.Require().NoError(err)

	s.NotEqual(refA, refB)
	s.Equal(refB, s.chain.Head())

	// A fresh chain given the same second fingerprint produces a different
	// reference because the head differs.
	other := NewHashChain()
	otherRef, err := other.Submit(s.ctx, "fp-b")
	s.Require().NoError(err)
	s.NotEqual(refB, otherRef)
}

func (s *LedgerServiceSuite) TestAnchoredDocumentsListing() {
	first := id.NewDocumentID()
	second := id.NewDocumentID()
	_, err := s.svc.Anchor(s.ctx, first, "fp-1")
	s.Require().NoError(err)
	_, err = s.svc.Anchor(s.ctx, second, "fp-2")
	s.Require().NoError(err)

	ids, err := s.svc.AnchoredDocuments(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]id.DocumentID{first, second}, ids)
}
