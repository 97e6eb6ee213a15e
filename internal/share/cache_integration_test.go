//go:build integration

package share_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	platformredis "vault/internal/platform/redis"
	"vault/internal/share"
	id "vault/pkg/domain"
	"vault/pkg/testutil/containers"
)

func TestRevocationCacheAgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	t.Cleanup(func() {
		_ = rc.Client.Close()
		_ = rc.Container.Terminate(ctx)
	})

	cache := share.NewRevocationCache(
		&platformredis.Client{Client: rc.Client},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	grantID := id.NewGrantID()
	require.False(t, cache.IsRevoked(ctx, grantID))

	cache.MarkRevoked(ctx, grantID, time.Now().Add(time.Hour))
	require.True(t, cache.IsRevoked(ctx, grantID))

	// A marker for an already-expired grant is never written.
	expired := id.NewGrantID()
	cache.MarkRevoked(ctx, expired, time.Now().Add(-time.Minute))
	require.False(t, cache.IsRevoked(ctx, expired))

	// Unrelated grants are unaffected.
	require.False(t, cache.IsRevoked(ctx, id.NewGrantID()))
}
