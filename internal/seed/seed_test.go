package seed

import (
	"testing"

	"rizq/internal/database"
	"rizq/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeed_PopulatesMarketplace(t *testing.T) {
	db := newSeedDB(t)
	opts := DefaultOptions()

	res, err := Seed(db, opts)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Profiles != opts.NumUsers {
		t.Fatalf("profiles: got %d want %d", res.Profiles, opts.NumUsers)
	}
	if res.Deals == 0 || res.Messages < res.Deals {
		t.Fatalf("expected deals with messages, got %+v", res)
	}

	var profiles, deals, unread int64
	db.Model(&models.Profile{}).Count(&profiles)
	db.Model(&models.Deal{}).Count(&deals)
	db.Model(&models.Message{}).Where("is_read = ?", false).Count(&unread)
	if int(profiles) != res.Profiles || int(deals) != res.Deals {
		t.Fatalf("row counts disagree with result: profiles=%d deals=%d res=%+v", profiles, deals, res)
	}
	if unread == 0 {
		t.Fatalf("expected some unread messages")
	}

	var statuses []models.DealStatus
	db.Model(&models.Deal{}).Distinct().Pluck("status", &statuses)
	if len(statuses) < 3 {
		t.Fatalf("expected deals across the lifecycle, got %v", statuses)
	}
}

func TestSeed_CleanIsRepeatable(t *testing.T) {
	db := newSeedDB(t)
	opts := DefaultOptions()
	opts.NumUsers = 4
	opts.NumDeals = 4

	if _, err := Seed(db, opts); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if _, err := Seed(db, opts); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var profiles int64
	db.Model(&models.Profile{}).Count(&profiles)
	if profiles != 4 {
		t.Fatalf("expected clean reseed to leave 4 profiles, got %d", profiles)
	}
}

func TestSeed_RejectsTooFewUsers(t *testing.T) {
	if _, err := Seed(nil, Options{NumUsers: 1}); err == nil {
		t.Fatalf("expected error for a single user")
	}
}
