package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"vault/pkg/platform/sentinel"
)

// Chain is the external append-only ledger collaborator. Implementations
// format and submit commitments; they do not own consensus. Submit returns an
// opaque chain reference for the committed fingerprint.
type Chain interface {
	Submit(ctx context.Context, fingerprint string) (chainRef string, err error)
	Lookup(ctx context.Context, chainRef string) (fingerprint string, err error)
}

// HashChain is an in-process Chain where every entry's reference is
// sha256(previousRef || fingerprint). Any rewrite of history changes all
// subsequent references, which keeps the log externally checkable without a
// distributed ledger behind it.
type HashChain struct {
	mu      sync.Mutex
	headRef string
	entries map[string]string // chainRef -> fingerprint
}

// NewHashChain creates an empty hash chain seeded with a zero head.
func NewHashChain() *HashChain {
	return &HashChain{entries: make(map[string]string)}
}

func (c *HashChain) Submit(ctx context.Context, fingerprint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", sentinel.ErrUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := sha256.Sum256([]byte(c.headRef + fingerprint))
	ref := hex.EncodeToString(sum[:])
	c.entries[ref] = fingerprint
	c.headRef = ref
	return ref, nil
}

func (c *HashChain) Lookup(ctx context.Context, chainRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", sentinel.ErrUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	fingerprint, ok := c.entries[chainRef]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return fingerprint, nil
}

// Head returns the current head reference, for reconciliation reports.
func (c *HashChain) Head() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headRef
}
