package handlers

import (
	"net/http"

	"github.com/vecindo/vecindo/internal/db"
	"gorm.io/gorm"
)

// RegenerateAPIKeyHandler rotates the server API key. The caller must
// already hold the current key; the response is the only place the new
// one is shown.
func RegenerateAPIKeyHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiKey := db.RegenerateAPIKey(database)
		writeJSON(w, http.StatusOK, map[string]string{"apiKey": apiKey})
	}
}
