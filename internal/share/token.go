package share

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// tokenBytes gives 256 bits of entropy, enough that tokens are unguessable
// and collisions are not a practical concern. The storage layer still keeps
// a uniqueness constraint as a backstop.
const tokenBytes = 32

// NewAccessToken returns a URL-safe bearer token for a grant.
func NewAccessToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenDigest maps an access token to its stored form. Keyed lookups go
// through the digest so the raw token never touches the database.
func TokenDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
