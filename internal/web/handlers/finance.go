package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vecindo/vecindo/internal/db/models"
	"github.com/vecindo/vecindo/internal/finance"
	"github.com/vecindo/vecindo/internal/logging"
	"gorm.io/gorm"
)

// maxImportSize bounds uploaded spreadsheets (8 MiB).
const maxImportSize = 8 << 20

// OpenPeriodHandler creates a billing period for a community month.
func OpenPeriodHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var body struct {
			Month int `json:"month"`
			Year  int `json:"year"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		period, err := finance.OpenPeriod(r.Context(), db, communityID, body.Month, body.Year)
		if err != nil {
			if errors.Is(err, finance.ErrPeriodExists) {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, period)
	}
}

// ListPeriodsHandler returns a community's billing periods, newest first.
func ListPeriodsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var periods []models.FinancePeriod
		err := db.Where("community_id = ?", communityID).
			Order("year DESC, month DESC").
			Find(&periods).Error
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, periods)
	}
}

// ImportChargesHandler accepts a multipart upload: a "file" part with
// the spreadsheet and a "mapping" part with the column mapping JSON, or
// a "preset" field naming a saved mapping.
func ImportChargesHandler(db *gorm.DB, importer *finance.Importer, presets []finance.Preset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periodID := chi.URLParam(r, "periodID")

		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart upload")
			return
		}

		var mapping finance.Mapping
		switch {
		case r.FormValue("preset") != "":
			preset, ok := finance.FindPreset(presets, r.FormValue("preset"))
			if !ok {
				writeError(w, http.StatusBadRequest, "unknown mapping preset")
				return
			}
			mapping = preset.Mapping()
		case r.FormValue("mapping") != "":
			if err := json.Unmarshal([]byte(r.FormValue("mapping")), &mapping); err != nil {
				writeError(w, http.StatusBadRequest, "invalid mapping JSON")
				return
			}
		default:
			writeError(w, http.StatusBadRequest, "mapping or preset is required")
			return
		}

		// The period row resolves the community the import belongs to.
		var period models.FinancePeriod
		if err := db.First(&period, "id = ?", periodID).Error; err != nil {
			writeError(w, http.StatusNotFound, "period not found")
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file part is required")
			return
		}
		defer file.Close()

		result, err := importer.ImportCharges(r.Context(), period.CommunityID, periodID, file, mapping)
		if err != nil {
			switch {
			case errors.Is(err, finance.ErrNoCharges):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, finance.ErrPeriodNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			default:
				logging.L(r.Context()).Error("import failed", "period", periodID, "error", err)
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ReconcileUnitsHandler creates the units an import reported missing.
func ReconcileUnitsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID := chi.URLParam(r, "communityID")

		var body struct {
			Labels []string `json:"labels"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Labels) == 0 {
			writeError(w, http.StatusBadRequest, "labels are required")
			return
		}

		if err := finance.CreateMissingUnits(r.Context(), db, communityID, body.Labels); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"created": len(body.Labels)})
	}
}

// ListPresetsHandler exposes the configured mapping presets.
func ListPresetsHandler(presets []finance.Preset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if presets == nil {
			presets = []finance.Preset{}
		}
		writeJSON(w, http.StatusOK, presets)
	}
}
