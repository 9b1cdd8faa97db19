package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carlosalbertovr/intratime-killer/intratime"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeVendorError maps typed vendor failures to HTTP statuses: bad
// credentials and missing sessions are the caller's problem, transport
// failures are the vendor's.
func writeVendorError(w http.ResponseWriter, err error) {
	var authErr *intratime.AuthError
	var stateErr *intratime.StateError
	var fetchErr *intratime.FetchError

	switch {
	case errors.As(err, &authErr):
		writeError(w, authErr.Error(), http.StatusUnauthorized)
	case errors.As(err, &stateErr):
		writeError(w, stateErr.Error(), http.StatusUnauthorized)
	case errors.As(err, &fetchErr):
		writeError(w, fetchErr.Error(), http.StatusBadGateway)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
