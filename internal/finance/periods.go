package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/db/models"
	"gorm.io/gorm"
)

// ErrPeriodExists means a period is already open for that month.
var ErrPeriodExists = errors.New("finance: period already exists for that month")

// OpenPeriod creates the billing period for one community month.
// Unique per (community, month, year); never auto-closed. The unique
// index is the arbiter, so two concurrent creates resolve to one row
// and one ErrPeriodExists.
func OpenPeriod(ctx context.Context, db *gorm.DB, communityID string, month, year int) (*models.FinancePeriod, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("finance: month must be 1-12, got %d", month)
	}
	if year < 2000 || year > 2200 {
		return nil, fmt.Errorf("finance: implausible year %d", year)
	}

	period := models.FinancePeriod{
		ID:          uuid.New().String(),
		CommunityID: communityID,
		Month:       month,
		Year:        year,
		Status:      models.PeriodOpen,
	}
	if err := db.WithContext(ctx).Create(&period).Error; err != nil {
		if isPeriodConflict(err) {
			return nil, ErrPeriodExists
		}
		return nil, err
	}
	return &period, nil
}

// isPeriodConflict reports whether err is the unique-index violation on
// (community_id, month, year).
func isPeriodConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
