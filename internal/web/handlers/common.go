// Package handlers holds the HTTP surface: thin closures over the
// pipeline services, returning JSON and mapping sentinel errors to
// status codes.
package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders the boundary error shape: {"error": "..."}.
// Internal failures are converted here, never left to panic upward.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
