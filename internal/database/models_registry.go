package database

import (
	"fmt"

	"rizq/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Gig{},
		&models.Demand{},
		&models.Deal{},
		&models.Message{},
	}
}

// OpenDealIndexName is the partial unique index that rejects a second open
// deal over the same two items, whichever side proposed it.
const OpenDealIndexName = "uniq_open_deal_items"

const (
	initiatorItemKey = "initiator_item_type || ':' || CAST(initiator_item_id AS TEXT)"
	recipientItemKey = "recipient_item_type || ':' || CAST(recipient_item_id AS TEXT)"
)

// OpenDealIndexSQL orders the two item keys so a mirrored proposal collides
// with the original. PostgreSQL and SQLite both accept it.
var OpenDealIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS ` + OpenDealIndexName + ` ON deals (
	(CASE WHEN ` + initiatorItemKey + ` <= ` + recipientItemKey + ` THEN ` + initiatorItemKey + ` ELSE ` + recipientItemKey + ` END),
	(CASE WHEN ` + initiatorItemKey + ` <= ` + recipientItemKey + ` THEN ` + recipientItemKey + ` ELSE ` + initiatorItemKey + ` END)
) WHERE status IN ('pending', 'active')`

var indexStatements = []string{OpenDealIndexSQL}

// EnsureIndexes creates indexes GORM struct tags cannot express.
func EnsureIndexes(db *gorm.DB) error {
	for _, stmt := range indexStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}

// AutoMigrate creates or updates every persistent table and its extra indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return err
	}
	return EnsureIndexes(db)
}
