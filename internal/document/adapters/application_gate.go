// Package adapters wires the registry's ports to their concrete providers
// without creating package cycles.
package adapters

import (
	"context"
	"errors"

	"vault/internal/application"
	id "vault/pkg/domain"
	dErrors "vault/pkg/domain-errors"
	"vault/pkg/platform/sentinel"
)

// ApplicationGate answers issuance eligibility straight from the application
// store. Going through the store instead of the workflow service keeps the
// registry and workflow constructible in either order.
type ApplicationGate struct {
	store application.Store
}

func NewApplicationGate(store application.Store) *ApplicationGate {
	return &ApplicationGate{store: store}
}

func (g *ApplicationGate) IsApproved(ctx context.Context, applicationID id.ApplicationID) (bool, error) {
	app, err := g.store.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return false, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "application lookup failed")
	}
	return app.Status == application.StatusApproved, nil
}
