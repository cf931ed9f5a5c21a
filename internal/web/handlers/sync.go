package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vecindo/vecindo/internal/auth/token"
	"github.com/vecindo/vecindo/internal/logging"
	"github.com/vecindo/vecindo/internal/mail"
)

// SyncHandler triggers a mailbox sync for one community.
func SyncHandler(syncer *mail.Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		result, err := syncer.SyncCommunity(r.Context(), communityID)
		if err != nil {
			if errors.Is(err, token.ErrNotConnected) {
				writeError(w, http.StatusNotFound, "community has no mail integration")
				return
			}
			logging.L(r.Context()).Error("sync failed", "community", communityID, "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
