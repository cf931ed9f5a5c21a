package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/db/models"
	"gorm.io/gorm"
)

// CreateCommunityHandler registers a managed community.
func CreateCommunityHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
			writeError(w, http.StatusBadRequest, "community name is required")
			return
		}

		community := models.Community{
			ID:      uuid.New().String(),
			Name:    in.Name,
			Address: in.Address,
		}
		if err := db.Create(&community).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, community)
	}
}

// ListCommunitiesHandler returns all managed communities.
func ListCommunitiesHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var communities []models.Community
		if err := db.Order("name").Find(&communities).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, communities)
	}
}

// ListActivitiesHandler returns a community's audit trail, newest first.
func ListActivitiesHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var activities []models.Activity
		err := db.Where("community_id = ?", communityID).
			Order("created_at DESC").
			Limit(100).
			Find(&activities).Error
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, activities)
	}
}
