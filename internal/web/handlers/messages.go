package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vecindo/vecindo/internal/auth/token"
	"github.com/vecindo/vecindo/internal/db/models"
	"github.com/vecindo/vecindo/internal/logging"
	"github.com/vecindo/vecindo/internal/mail"
	"gorm.io/gorm"
)

// ListMessagesHandler returns a community's communications, newest
// first. Optional ?status= and ?direction= filters.
func ListMessagesHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		q := db.Where("community_id = ?", communityID).Order("received_at DESC")
		if status := r.URL.Query().Get("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if direction := r.URL.Query().Get("direction"); direction != "" {
			q = q.Where("direction = ?", direction)
		}

		var messages []models.Communication
		if err := q.Find(&messages).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

// SendMessageHandler sends outbound mail through the community's
// integration and returns the recorded local copy.
func SendMessageHandler(sender *mail.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var msg mail.OutboundMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		comm, err := sender.Send(r.Context(), communityID, msg)
		if err != nil {
			if errors.Is(err, token.ErrNotConnected) {
				writeError(w, http.StatusNotFound, "community has no mail integration")
				return
			}
			logging.L(r.Context()).Error("send failed", "community", communityID, "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, comm)
	}
}

// validStatuses for the inbox triage flow.
var validStatuses = map[string]bool{
	models.StatusNew:      true,
	models.StatusPending:  true,
	models.StatusResolved: true,
}

// UpdateMessageStatusHandler moves a message through the triage states.
func UpdateMessageStatusHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "messageID")

		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !validStatuses[body.Status] {
			writeError(w, http.StatusBadRequest, "status must be one of new, pending, resolved")
			return
		}

		result := db.Model(&models.Communication{}).Where("id = ?", id).Update("status", body.Status)
		if result.Error != nil {
			writeError(w, http.StatusInternalServerError, result.Error.Error())
			return
		}
		if result.RowsAffected == 0 {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": body.Status})
	}
}
