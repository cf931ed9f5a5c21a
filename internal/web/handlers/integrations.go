package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vecindo/vecindo/internal/auth/token"
	"gorm.io/gorm"
)

// IntegrationStatusHandler reports whether a community's mailbox is
// connected, without ever exposing token material.
func IntegrationStatusHandler(mgr *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		integ, _, err := mgr.Credentials(communityID)
		if err != nil {
			if errors.Is(err, token.ErrNotConnected) {
				writeJSON(w, http.StatusOK, map[string]any{"connected": false})
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"connected":    true,
			"provider":     integ.Provider,
			"email":        integ.Email,
			"lastSyncedAt": integ.LastSyncedAt,
		})
	}
}

// DisconnectHandler removes a community's integration row. The provider
// grant itself is revoked by the user on the provider's side.
func DisconnectHandler(mgr *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		if err := mgr.Disconnect(communityID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"connected": false})
	}
}
