package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/db/models"
	"gorm.io/gorm"
)

var validTaskStatuses = map[string]bool{
	models.TaskTodo:       true,
	models.TaskInProgress: true,
	models.TaskDone:       true,
}

// CreateTaskHandler adds a task to a community's board, appended to the
// end of its column.
func CreateTaskHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var in struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Status      string     `json:"status"`
			DueDate     *time.Time `json:"dueDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
			writeError(w, http.StatusBadRequest, "task title is required")
			return
		}
		if in.Status == "" {
			in.Status = models.TaskTodo
		}
		if !validTaskStatuses[in.Status] {
			writeError(w, http.StatusBadRequest, "invalid task status")
			return
		}

		var maxPos int
		db.Model(&models.Task{}).
			Where("community_id = ? AND status = ?", communityID, in.Status).
			Select("COALESCE(MAX(position), -1)").Scan(&maxPos)

		task := models.Task{
			ID:          uuid.New().String(),
			CommunityID: communityID,
			Title:       in.Title,
			Description: in.Description,
			Status:      in.Status,
			Position:    maxPos + 1,
			DueDate:     in.DueDate,
		}
		if err := db.Create(&task).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

// ListTasksHandler returns the board grouped by column order.
func ListTasksHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var tasks []models.Task
		err := db.Where("community_id = ?", communityID).
			Order("status, position").
			Find(&tasks).Error
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

// MoveTaskHandler changes a task's column and/or position.
func MoveTaskHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "taskID")

		var in struct {
			Status   string `json:"status"`
			Position *int   `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var task models.Task
		if err := db.First(&task, "id = ?", id).Error; err != nil {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		if in.Status != "" {
			if !validTaskStatuses[in.Status] {
				writeError(w, http.StatusBadRequest, "invalid task status")
				return
			}
			task.Status = in.Status
		}
		if in.Position != nil {
			task.Position = *in.Position
		}

		if err := db.Save(&task).Error; err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

// DeleteTaskHandler removes a task from the board.
func DeleteTaskHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "taskID")

		result := db.Delete(&models.Task{}, "id = ?", id)
		if result.Error != nil {
			writeError(w, http.StatusInternalServerError, result.Error.Error())
			return
		}
		if result.RowsAffected == 0 {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
