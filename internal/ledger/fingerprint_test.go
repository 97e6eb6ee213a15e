package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
)

func validPayload() Payload {
	return Payload{
		FileBytes:      []byte("official document content"),
		Type:           id.DocumentTypePassport,
		DocumentNumber: "PA-000000000001",
		AuthorityID:    id.AuthorityID(mustUUID("6f1b0a6e-0d5a-4d88-9a3e-111111111111")),
		IssueDate:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	p := validPayload()

	first, err := Fingerprint(p)
	require.NoError(t, err)
	second, err := Fingerprint(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFingerprintSensitiveToEveryField(t *testing.T) {
	base, err := Fingerprint(validPayload())
	require.NoError(t, err)

	expiry := time.Date(2036, 3, 1, 10, 0, 0, 0, time.UTC)
	mutations := map[string]func(*Payload){
		"file bytes":      func(p *Payload) { p.FileBytes = []byte("tampered content") },
		"document type":   func(p *Payload) { p.Type = id.DocumentTypeDriversLicense },
		"document number": func(p *Payload) { p.DocumentNumber = "PA-000000000002" },
		"authority":       func(p *Payload) { p.AuthorityID = id.AuthorityID(mustUUID("6f1b0a6e-0d5a-4d88-9a3e-222222222222")) },
		"issue date":      func(p *Payload) { p.IssueDate = p.IssueDate.Add(time.Second) },
		"expiry date":     func(p *Payload) { p.ExpiryDate = &expiry },
	}
	for name, mutate := range mutations {
		p := validPayload()
		mutate(&p)
		got, err := Fingerprint(p)
		require.NoError(t, err, name)
		assert.NotEqual(t, base, got, "changing %s must change the fingerprint", name)
	}
}

func TestFingerprintFieldBoundariesCannotCollide(t *testing.T) {
	// Shifting a byte across the number/content boundary must not produce the
	// same hash input thanks to length prefixes.
	a := validPayload()
	a.DocumentNumber = "PA-1"
	a.FileBytes = []byte("23content")

	b := validPayload()
	b.DocumentNumber = "PA-12"
	b.FileBytes = []byte("3content")

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpB)
}

func TestFingerprintRejectsIncompletePayload(t *testing.T) {
	cases := map[string]func(*Payload){
		"empty file":      func(p *Payload) { p.FileBytes = nil },
		"unknown type":    func(p *Payload) { p.Type = "scroll" },
		"missing number":  func(p *Payload) { p.DocumentNumber = "" },
		"nil authority":   func(p *Payload) { p.AuthorityID = id.AuthorityID{} },
		"zero issue date": func(p *Payload) { p.IssueDate = time.Time{} },
	}
	for name, mutate := range cases {
		p := validPayload()
		mutate(&p)
		_, err := Fingerprint(p)
		require.Error(t, err, name)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidPayload), name)
	}
}
