package finance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// totalTolerance is the absolute tolerance for declared-total checks.
const totalTolerance = 0.01

// ErrNoCharges aborts an import that extracted nothing: every cell zero
// or non-numeric almost certainly means a wrong column mapping.
var ErrNoCharges = errors.New("finance: no charges extracted from file")

// ErrPeriodNotFound means the target period does not exist or belongs to
// another community.
var ErrPeriodNotFound = errors.New("finance: period not found")

// Mapping tells the importer which spreadsheet columns mean what.
type Mapping struct {
	UnitColumn     string   `json:"unitColumn"`
	ConceptColumns []string `json:"conceptColumns"`
	TotalColumn    string   `json:"totalColumn,omitempty"`
}

// ImportResult reports one import run. MissingUnits and ValidationErrors
// are nil when empty so callers can distinguish "clean" at a glance.
type ImportResult struct {
	Inserted         int      `json:"inserted"`
	MissingUnits     []string `json:"missingUnits,omitempty"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
}

// Importer transforms wide per-unit spreadsheets into charge rows.
type Importer struct {
	db *gorm.DB
}

// NewImporter creates a charge importer.
func NewImporter(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// ImportCharges pivots the spreadsheet into one charge row per unit and
// concept, skipping zero and non-numeric cells. Rows referencing unknown
// units contribute nothing and surface in MissingUnits; declared-total
// mismatches surface in ValidationErrors but do not abort. Charges are
// upserted on (period, unit, concept), so re-importing a corrected file
// updates amounts instead of duplicating rows, and the period's
// TotalBilled is overwritten with this run's sum.
func (imp *Importer) ImportCharges(ctx context.Context, communityID, periodID string, file io.Reader, m Mapping) (*ImportResult, error) {
	if m.UnitColumn == "" || len(m.ConceptColumns) == 0 {
		return nil, fmt.Errorf("finance: mapping needs a unit column and at least one concept column")
	}

	var period models.FinancePeriod
	err := imp.db.WithContext(ctx).
		Where("id = ? AND community_id = ?", periodID, communityID).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}

	sheet, err := ParseSheet(file)
	if err != nil {
		return nil, err
	}

	units, err := imp.unitIndex(ctx, communityID)
	if err != nil {
		return nil, err
	}

	var (
		details     []models.ChargeDetail
		periodTotal float64
		missingSet  = map[string]bool{}
		missing     []string
		warnings    []string
	)

	for _, row := range sheet.Rows {
		label := strings.TrimSpace(row[m.UnitColumn])
		if label == "" {
			continue
		}

		unitID, ok := units[strings.ToLower(label)]
		if !ok {
			if !missingSet[label] {
				missingSet[label] = true
				missing = append(missing, label)
			}
			continue
		}

		var rowSum float64
		for _, col := range m.ConceptColumns {
			amount, ok := parseAmount(row[col])
			if !ok || amount == 0 {
				continue
			}
			details = append(details, models.ChargeDetail{
				ID:           uuid.New().String(),
				PeriodID:     periodID,
				UnitID:       unitID,
				ConceptName:  col,
				Amount:       amount,
				SourceColumn: col,
			})
			rowSum += amount
		}
		periodTotal += rowSum

		if m.TotalColumn != "" {
			if declared, ok := parseAmount(row[m.TotalColumn]); ok {
				if math.Abs(rowSum-declared) > totalTolerance {
					warnings = append(warnings, fmt.Sprintf(
						"unit %s: computed sum %.2f does not match declared total %.2f",
						label, rowSum, declared))
				}
			}
		}
	}

	if len(details) == 0 {
		return nil, ErrNoCharges
	}

	err = imp.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "period_id"}, {Name: "unit_id"}, {Name: "concept_name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "source_column", "updated_at"}),
	}).Create(&details).Error
	if err != nil {
		return nil, fmt.Errorf("persist charges: %w", err)
	}

	err = imp.db.WithContext(ctx).Model(&models.FinancePeriod{}).
		Where("id = ?", periodID).
		Update("total_billed", periodTotal).Error
	if err != nil {
		return nil, fmt.Errorf("update period total: %w", err)
	}

	imp.db.WithContext(ctx).Create(&models.Activity{
		ID:          uuid.New().String(),
		CommunityID: communityID,
		Kind:        "import",
		Description: fmt.Sprintf("imported %d charges for %d/%d", len(details), period.Month, period.Year),
		CreatedAt:   time.Now(),
	})

	return &ImportResult{
		Inserted:         len(details),
		MissingUnits:     missing,
		ValidationErrors: warnings,
	}, nil
}

// unitIndex loads the community's units keyed by lowercased number.
func (imp *Importer) unitIndex(ctx context.Context, communityID string) (map[string]string, error) {
	var units []models.Unit
	err := imp.db.WithContext(ctx).Where("community_id = ?", communityID).Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	index := make(map[string]string, len(units))
	for _, u := range units {
		index[strings.ToLower(strings.TrimSpace(u.UnitNumber))] = u.ID
	}
	return index, nil
}

// parseAmount parses a spreadsheet cell as a number, tolerating blanks,
// currency symbols and thousands separators. ok is false for anything
// that is not a number.
func parseAmount(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
