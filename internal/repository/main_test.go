package repository

import (
	"testing"
	"time"

	"rizq/internal/database"
	"rizq/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedProfiles(t *testing.T, db *gorm.DB, names ...string) []models.Profile {
	t.Helper()
	profiles := make([]models.Profile, 0, len(names))
	for _, name := range names {
		p := models.Profile{Username: name, FullName: name}
		require.NoError(t, db.Create(&p).Error)
		profiles = append(profiles, p)
	}
	return profiles
}

func insertMessage(t *testing.T, db *gorm.DB, from, to uint, content string, at time.Time) models.Message {
	t.Helper()
	msg := models.Message{SenderID: from, RecipientID: to, Content: content, CreatedAt: at}
	require.NoError(t, db.Create(&msg).Error)
	return msg
}
