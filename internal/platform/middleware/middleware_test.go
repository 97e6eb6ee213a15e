package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault/pkg/requestcontext"
)

func TestRequestIDAttachesRequestValues(t *testing.T) {
	var (
		gotRequestID string
		gotClientIP  string
		gotAgent     string
	)
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = requestcontext.RequestID(r.Context())
		gotClientIP = requestcontext.ClientIP(r.Context())
		gotAgent = requestcontext.UserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:141.0) Gecko/20100101 Firefox/141.0")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, gotRequestID)
	assert.Equal(t, gotRequestID, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "203.0.113.7", gotClientIP)
	assert.Contains(t, gotAgent, "Firefox")
	assert.Contains(t, gotAgent, "Linux")
}

func TestRequestIDHonorsInboundHeader(t *testing.T) {
	var got string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-id-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "upstream-id-42", got)
}

func TestNormalizeUserAgent(t *testing.T) {
	t.Run("empty stays empty", func(t *testing.T) {
		assert.Empty(t, normalizeUserAgent(""))
	})

	t.Run("browser agents collapse to a readable label", func(t *testing.T) {
		label := normalizeUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
		assert.Contains(t, label, "Chrome")
		assert.Contains(t, label, "Windows")
	})

	t.Run("unrecognized agents keep the raw string truncated", func(t *testing.T) {
		raw := strings.Repeat("x", 400)
		label := normalizeUserAgent(raw)
		assert.Len(t, label, 256)
	})
}
