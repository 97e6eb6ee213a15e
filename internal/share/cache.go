package share

import (
	"context"
	"log/slog"
	"time"

	platformredis "vault/internal/platform/redis"
	id "vault/pkg/domain"
)

// RevocationCache keeps revoked-grant markers in Redis so hot verify paths
// can reject a revoked token without a database round trip. The database row
// stays the source of truth; cache writes are best-effort and a miss just
// falls through to storage.
type RevocationCache struct {
	client *platformredis.Client
	logger *slog.Logger
}

func NewRevocationCache(client *platformredis.Client, logger *slog.Logger) *RevocationCache {
	return &RevocationCache{client: client, logger: logger}
}

func revocationKey(grantID id.GrantID) string {
	return "share:revoked:" + grantID.String()
}

// MarkRevoked records a revocation marker that lives until the grant would
// have expired anyway; after that the stored expiry wins regardless.
func (c *RevocationCache) MarkRevoked(ctx context.Context, grantID id.GrantID, expiresAt time.Time) {
	if c == nil || c.client == nil {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, revocationKey(grantID), "1", ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "revocation cache write failed", "grant_id", grantID, "error", err)
	}
}

// IsRevoked reports a cached revocation marker. False on any cache error.
func (c *RevocationCache) IsRevoked(ctx context.Context, grantID id.GrantID) bool {
	if c == nil || c.client == nil {
		return false
	}
	n, err := c.client.Exists(ctx, revocationKey(grantID)).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "revocation cache read failed", "grant_id", grantID, "error", err)
		return false
	}
	return n > 0
}
