package finance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureUnit upserts one unit by (community, number) and returns its id.
// Reused by contact creation, which implicitly registers the contact's
// unit.
func EnsureUnit(ctx context.Context, db *gorm.DB, communityID, label string) (string, error) {
	label = strings.TrimSpace(label)
	unit := models.Unit{
		ID:          uuid.New().String(),
		CommunityID: communityID,
		UnitNumber:  label,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "unit_number"}},
		DoNothing: true,
	}).Create(&unit).Error
	if err != nil {
		return "", err
	}

	// On conflict the generated id was discarded; read the winner back.
	var existing models.Unit
	err = db.WithContext(ctx).
		Where("community_id = ? AND unit_number = ?", communityID, label).
		First(&existing).Error
	if err != nil {
		return "", err
	}
	return existing.ID, nil
}

// CreateMissingUnits registers the labels an import reported missing so
// the operator can immediately retry the same file. Idempotent: already
// existing labels are left untouched.
func CreateMissingUnits(ctx context.Context, db *gorm.DB, communityID string, labels []string) error {
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		if _, err := EnsureUnit(ctx, db, communityID, label); err != nil {
			return err
		}
	}
	return nil
}
