// Package jwttoken issues and validates the HS256 bearer tokens that identify
// principals (citizens, authority reviewers, admins) to the vault API.
package jwttoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "vault/pkg/domain"
	"vault/pkg/requestcontext"
)

// Manager signs and validates principal tokens.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
}

// New creates a token manager. ttl bounds how long issued tokens stay valid.
func New(signingKey string, ttl time.Duration) *Manager {
	return &Manager{signingKey: []byte(signingKey), ttl: ttl}
}

type claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the given principal.
func (m *Manager) Issue(p requestcontext.Principal) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: p.Name,
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning the principal it names.
func (m *Manager) Validate(tokenString string) (requestcontext.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return requestcontext.Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return requestcontext.Principal{}, fmt.Errorf("invalid token")
	}

	userID, err := id.ParseUserID(c.Subject)
	if err != nil {
		return requestcontext.Principal{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	role := requestcontext.Role(c.Role)
	switch role {
	case requestcontext.RoleCitizen, requestcontext.RoleAuthority, requestcontext.RoleAdmin:
	default:
		return requestcontext.Principal{}, fmt.Errorf("unknown role claim %q", c.Role)
	}

	return requestcontext.Principal{UserID: userID, Name: c.Name, Role: role}, nil
}
