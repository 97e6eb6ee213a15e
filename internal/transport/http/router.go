// Package httptransport assembles the vault's HTTP surface: the shared
// middleware chain, the public capability-token routes and the authenticated
// API.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicationhandler "vault/internal/application/handler"
	documenthandler "vault/internal/document/handler"
	"vault/internal/platform/middleware"
	sharehandler "vault/internal/share/handler"
	"vault/internal/transport/http/shared"
	dErrors "vault/pkg/domain-errors"
)

const requestTimeout = 30 * time.Second

// HealthCheck reports backend liveness for the /healthz endpoint.
type HealthCheck func(ctx context.Context) error

// NewRouter wires every endpoint behind the common middleware chain. The
// public group carries no authentication: /healthz, /metrics and the
// capability-token routes where the token itself is the credential.
func NewRouter(
	applications *applicationhandler.Handler,
	documents *documenthandler.Handler,
	shares *sharehandler.Handler,
	validator middleware.TokenValidator,
	health HealthCheck,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", handleHealth(health))
	r.Handle("/metrics", promhttp.Handler())
	shares.RegisterPublic(r)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(validator, logger))
		applications.Register(authed)
		documents.Register(authed)
		shares.Register(authed)
	})

	return r
}

func handleHealth(health HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "backend unhealthy"))
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
