// Package bootstrap wires the database, schema and Redis for the binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rizq/internal/cache"
	"rizq/internal/config"
	"rizq/internal/database"
	"rizq/internal/models"
	"rizq/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrDemoSeedInProduction is returned when demo data is requested in production.
var ErrDemoSeedInProduction = errors.New("demo seeding is disabled in production")

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations and/or AutoMigrate per DB_SCHEMA_MODE.
	ApplySchema bool
	// SeedDemo fills an empty database with fake marketplace data.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis, applies the schema and optionally
// seeds demo data. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := Prepare(ctx, db, cfg, opts); err != nil {
		return nil, nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// Prepare runs the schema and seeding steps on an open database.
func Prepare(ctx context.Context, db *gorm.DB, cfg *config.Config, opts Options) error {
	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if opts.SeedDemo {
		if cfg.IsProduction() {
			return ErrDemoSeedInProduction
		}
		if err := seedIfEmpty(db); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}

func seedIfEmpty(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Profile{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		slog.Info("demo seed skipped, profiles already present", slog.Int64("profiles", count))
		return nil
	}
	opts := seed.DefaultOptions()
	opts.ShouldClean = false
	_, err := seed.Seed(db, opts)
	return err
}
