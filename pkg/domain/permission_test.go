package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vault/pkg/domain-errors"
)

func TestParsePermissions(t *testing.T) {
	t.Run("empty set rejected", func(t *testing.T) {
		_, err := ParsePermissions(nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNoPermissions))
	})

	t.Run("unknown permission rejected", func(t *testing.T) {
		_, err := ParsePermissions([]string{"view", "print"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		perms, err := ParsePermissions([]string{"view", "view", "download"})
		require.NoError(t, err)
		assert.Equal(t, []Permission{PermissionView, PermissionDownload}, perms)
	})
}

func TestParseShareDuration(t *testing.T) {
	windows := map[string]time.Duration{
		"1h":  time.Hour,
		"24h": 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
	}
	for raw, want := range windows {
		d, err := ParseShareDuration(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, d.Window(), raw)
	}

	// Only the fixed buckets are accepted; arbitrary durations are not.
	for _, raw := range []string{"", "2h", "30m", "forever"} {
		_, err := ParseShareDuration(raw)
		require.Error(t, err, raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), raw)
	}
}
