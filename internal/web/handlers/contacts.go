package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/db/models"
	"github.com/vecindo/vecindo/internal/finance"
	"gorm.io/gorm"
)

type contactInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	UnitNumber string `json:"unitNumber"`
}

// CreateContactHandler registers a resident. Naming a unit implicitly
// registers that unit for the community.
func CreateContactHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var in contactInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
			writeError(w, http.StatusBadRequest, "contact name is required")
			return
		}

		contact := models.Contact{
			ID:          uuid.New().String(),
			CommunityID: communityID,
			Name:        in.Name,
			Email:       in.Email,
			Phone:       in.Phone,
			Role:        in.Role,
		}
		if in.UnitNumber != "" {
			unitID, err := finance.EnsureUnit(r.Context(), db, communityID, in.UnitNumber)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			contact.UnitID = unitID
		}

		if err := db.Create(&contact).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, contact)
	}
}

// ListContactsHandler returns a community's contacts alphabetically.
func ListContactsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var contacts []models.Contact
		err := db.Where("community_id = ?", communityID).Order("name").Find(&contacts).Error
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, contacts)
	}
}

// UpdateContactHandler applies a partial update to a contact.
func UpdateContactHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "contactID")

		var contact models.Contact
		if err := db.First(&contact, "id = ?", id).Error; err != nil {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}

		var in contactInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if in.Name != "" {
			contact.Name = in.Name
		}
		if in.Email != "" {
			contact.Email = in.Email
		}
		if in.Phone != "" {
			contact.Phone = in.Phone
		}
		if in.Role != "" {
			contact.Role = in.Role
		}
		if in.UnitNumber != "" {
			unitID, err := finance.EnsureUnit(r.Context(), db, contact.CommunityID, in.UnitNumber)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			contact.UnitID = unitID
		}
		contact.UpdatedAt = time.Now()

		if err := db.Save(&contact).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, contact)
	}
}

// DeleteContactHandler removes a contact. The unit, if any, survives
// since charges may reference it.
func DeleteContactHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "contactID")

		result := db.Delete(&models.Contact{}, "id = ?", id)
		if result.Error != nil {
			writeError(w, http.StatusInternalServerError, result.Error.Error())
			return
		}
		if result.RowsAffected == 0 {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
