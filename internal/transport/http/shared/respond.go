// Package shared holds the response helpers every handler uses.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "vault/pkg/domain-errors"
)

// errorResponse is the wire shape of every error this service returns.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are swallowed;
// the status line is already on the wire by then.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and writes the code plus
// message. Non-domain errors collapse to a bare 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	var de *dErrors.Error
	if errors.As(err, &de) {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// WriteNotFound writes the anonymous 404 used when resource existence must
// not be confirmed to the caller.
func WriteNotFound(w http.ResponseWriter) {
	WriteJSON(w, http.StatusNotFound, errorResponse{Error: string(dErrors.CodeNotFound), ErrorDescription: "not found"})
}
