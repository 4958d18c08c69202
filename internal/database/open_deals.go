package database

import (
	"context"
	"fmt"

	"rizq/internal/models"

	"gorm.io/gorm"
)

// OpenDealConflict is an item pairing held by more than one open deal. Such
// rows block creation of the direction-insensitive open-deal index.
type OpenDealConflict struct {
	LowKey  string
	HighKey string
	Deals   int64
	FirstID uint
}

var openDealConflictSQL = `SELECT
	CASE WHEN ` + initiatorItemKey + ` <= ` + recipientItemKey + ` THEN ` + initiatorItemKey + ` ELSE ` + recipientItemKey + ` END AS low_key,
	CASE WHEN ` + initiatorItemKey + ` <= ` + recipientItemKey + ` THEN ` + recipientItemKey + ` ELSE ` + initiatorItemKey + ` END AS high_key,
	COUNT(*) AS deals,
	MIN(id) AS first_id
FROM deals
WHERE status IN ('pending', 'active')
GROUP BY 1, 2
HAVING COUNT(*) > 1
ORDER BY first_id`

// FindOpenDealConflicts lists pairings with several open deals. A database
// without a deals table has none.
func FindOpenDealConflicts(ctx context.Context, db *gorm.DB) ([]OpenDealConflict, error) {
	conflicts := []OpenDealConflict{}
	if !db.Migrator().HasTable(&models.Deal{}) {
		return conflicts, nil
	}
	if err := db.WithContext(ctx).Raw(openDealConflictSQL).Scan(&conflicts).Error; err != nil {
		return nil, fmt.Errorf("find open deal conflicts: %w", err)
	}
	return conflicts, nil
}

// CountDealsByStatus returns how many deals sit in each status.
func CountDealsByStatus(ctx context.Context, db *gorm.DB) (map[models.DealStatus]int64, error) {
	counts := map[models.DealStatus]int64{}
	if !db.Migrator().HasTable(&models.Deal{}) {
		return counts, nil
	}
	var rows []struct {
		Status models.DealStatus
		Total  int64
	}
	err := db.WithContext(ctx).Model(&models.Deal{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count deals: %w", err)
	}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
