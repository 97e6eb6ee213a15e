// Package httpserver builds the http.Server with the timeouts this service
// needs: generous write windows for artifact downloads, tight header reads.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the vault HTTP server. WriteTimeout covers streaming a full
// document artifact to a slow client; per-request budgets are enforced by
// the timeout middleware, not here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
