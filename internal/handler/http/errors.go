package http

import "net/http"

// Caller-input failures are always answered with the same opaque 403, so a
// probing client cannot tell a wrong password from an unknown account, an
// expired session from a missing one, or a filtered origin from a bad form.
func forbidden(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

// Infrastructure failures answer 500; the detail stays in the logs.
func internalError(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
