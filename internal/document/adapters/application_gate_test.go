package adapters

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault/internal/application"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/platform/sentinel"
)

// gateStore lets tests script the lookup outcome, including wrapped errors
// the way the postgres store surfaces them.
type gateStore struct {
	application.Store
	app application.Application
	err error
}

func (s *gateStore) FindByID(_ context.Context, _ id.ApplicationID) (application.Application, error) {
	return s.app, s.err
}

func TestIsApproved(t *testing.T) {
	t.Run("approved application passes", func(t *testing.T) {
		gate := NewApplicationGate(&gateStore{app: application.Application{Status: application.StatusApproved}})
		ok, err := gate.IsApproved(context.Background(), id.NewApplicationID())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("pending application fails", func(t *testing.T) {
		gate := NewApplicationGate(&gateStore{app: application.Application{Status: application.StatusUnderReview}})
		ok, err := gate.IsApproved(context.Background(), id.NewApplicationID())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrapped not-found still maps to NotFound", func(t *testing.T) {
		gate := NewApplicationGate(&gateStore{err: fmt.Errorf("find application: %w", sentinel.ErrNotFound)})
		_, err := gate.IsApproved(context.Background(), id.NewApplicationID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("other store errors map to StorageUnavailable", func(t *testing.T) {
		gate := NewApplicationGate(&gateStore{err: sentinel.ErrUnavailable})
		_, err := gate.IsApproved(context.Background(), id.NewApplicationID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
	})
}
