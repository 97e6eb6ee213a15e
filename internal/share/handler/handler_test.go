package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vault/internal/document"
	"vault/internal/share"
	"vault/internal/share/handler/mocks"
	"vault/internal/share/service"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
)

type ShareHandlerSuite struct {
	suite.Suite
	shares   *mocks.MockService
	verifier *mocks.MockVerifier
	router   chi.Router
}

func (s *ShareHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	s.shares = mocks.NewMockService(ctrl)
	s.verifier = mocks.NewMockVerifier(ctrl)

	h := New(s.shares, s.verifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterPublic(s.router)
}

func TestShareHandlerSuite(t *testing.T) {
	suite.Run(t, new(ShareHandlerSuite))
}

func (s *ShareHandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sampleGrant() share.Grant {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return share.Grant{
		ID:          id.NewGrantID(),
		DocumentID:  id.NewDocumentID(),
		GrantorID:   id.NewUserID(),
		Recipient:   "bank@example.kz",
		Purpose:     "loan application",
		Permissions: []id.Permission{id.PermissionView, id.PermissionVerify},
		AccessToken: "tok-abc123",
		Status:      share.StatusActive,
		IssuedAt:    now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
}

func (s *ShareHandlerSuite) TestCreateReturnsTokenOnce() {
	grant := sampleGrant()
	s.shares.EXPECT().Create(gomock.Any(), service.CreateRequest{
		DocumentID:  grant.DocumentID,
		Recipient:   grant.Recipient,
		Purpose:     grant.Purpose,
		Permissions: []string{"view", "verify"},
		Duration:    "24h",
	}).Return(grant, nil)

	w := s.do(http.MethodPost, "/shares", createRequest{
		DocumentID:  grant.DocumentID.String(),
		Recipient:   grant.Recipient,
		Purpose:     grant.Purpose,
		Permissions: []string{"view", "verify"},
		Duration:    "24h",
	})

	s.Equal(http.StatusCreated, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("tok-abc123", resp["access_token"])
	s.Equal(grant.ID.String(), resp["id"])
}

func (s *ShareHandlerSuite) TestCreateRejectsMalformedDocumentID() {
	w := s.do(http.MethodPost, "/shares", createRequest{
		DocumentID: "not-a-uuid",
		Recipient:  "bank@example.kz",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ShareHandlerSuite) TestListOmitsTokens() {
	grant := sampleGrant()
	s.shares.EXPECT().ListMine(gomock.Any()).Return([]share.Grant{grant}, nil)

	w := s.do(http.MethodGet, "/shares", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp, 1)
	s.NotContains(resp[0], "access_token")
}

func (s *ShareHandlerSuite) TestRevokeRoute() {
	grant := sampleGrant()
	grant.Status = share.StatusRevoked
	s.shares.EXPECT().Revoke(gomock.Any(), grant.ID).Return(grant, nil)

	w := s.do(http.MethodPost, "/shares/"+grant.ID.String()+"/revoke", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("revoked", resp["status"])
	s.NotContains(resp, "access_token")
}

func (s *ShareHandlerSuite) TestViewSharedDocument() {
	grant := sampleGrant()
	doc := document.Document{
		ID:             grant.DocumentID,
		Type:           id.DocumentTypePassport,
		DocumentNumber: "PA-000000000001",
		AuthorityID:    id.AuthorityID(id.NewUserID()),
		IssueDate:      grant.IssuedAt,
		Status:         document.StatusVerified,
	}
	s.shares.EXPECT().Authorize(gomock.Any(), grant.AccessToken, id.PermissionView).Return(grant, doc, nil)

	w := s.do(http.MethodGet, "/shared/"+grant.AccessToken, nil)

	s.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("PA-000000000001", resp["document_number"])
	// The recipient view never exposes the owner or storage internals.
	s.NotContains(resp, "owner_id")
	s.NotContains(resp, "file_ref")
}

func (s *ShareHandlerSuite) TestVerifySharedDocument() {
	grant := sampleGrant()
	doc := document.Document{ID: grant.DocumentID, Type: id.DocumentTypePassport, DocumentNumber: "PA-000000000001", Status: document.StatusVerified}
	s.shares.EXPECT().Authorize(gomock.Any(), grant.AccessToken, id.PermissionVerify).Return(grant, doc, nil)
	s.verifier.EXPECT().ReVerify(gomock.Any(), doc.ID).Return(document.VerificationResult{IsValid: true, ChainMatch: true}, nil)

	w := s.do(http.MethodGet, "/verify/"+grant.AccessToken, nil)

	s.Equal(http.StatusOK, w.Code)
	var resp verifyResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.IsValid)
	s.True(resp.ChainMatch)
}

func (s *ShareHandlerSuite) TestDownloadStreamsBytes() {
	grant := sampleGrant()
	doc := document.Document{ID: grant.DocumentID, DocumentNumber: "PA-000000000001"}
	s.shares.EXPECT().Download(gomock.Any(), grant.AccessToken).Return([]byte("artifact bytes"), doc, nil)

	w := s.do(http.MethodGet, "/shared/"+grant.AccessToken+"/download", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/octet-stream", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "PA-000000000001")
	s.Equal("artifact bytes", w.Body.String())
}

// TestPublicErrorsCollapseTo404 checks that a token holder cannot distinguish
// an unknown token from a revoked grant or a missing permission.
func (s *ShareHandlerSuite) TestPublicErrorsCollapseTo404() {
	cases := map[string]error{
		"unknown token":      dErrors.New(dErrors.CodeNotFound, "grant not found"),
		"inactive grant":     dErrors.New(dErrors.CodeGrantInactive, "grant is expired"),
		"missing permission": dErrors.New(dErrors.CodeNoPermissions, "permission not granted"),
	}
	for name, retErr := range cases {
		s.shares.EXPECT().Authorize(gomock.Any(), "some-token", id.PermissionView).Return(share.Grant{}, document.Document{}, retErr)

		w := s.do(http.MethodGet, "/shared/some-token", nil)

		s.Equal(http.StatusNotFound, w.Code, name)
		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), name)
		s.Equal("not_found", resp["error"], name)
	}
}

func (s *ShareHandlerSuite) TestInternalErrorsAreNotMasked() {
	s.shares.EXPECT().Authorize(gomock.Any(), "some-token", id.PermissionView).
		Return(share.Grant{}, document.Document{}, dErrors.New(dErrors.CodeInternal, "store unavailable"))

	w := s.do(http.MethodGet, "/shared/some-token", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
}
