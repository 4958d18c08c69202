// Command main fills a development database with fake marketplace data.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"rizq/internal/bootstrap"
	"rizq/internal/config"
	"rizq/internal/database"
	"rizq/internal/middleware"
	"rizq/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of profiles to create")
	gigs := flag.Int("gigs", defaults.GigsPerUser, "Gigs per profile")
	demands := flag.Int("demands", defaults.DemandsPerUser, "Demands per profile")
	numDeals := flag.Int("deals", defaults.NumDeals, "Number of deals to create")
	messages := flag.Int("messages", defaults.MessagesPerThread, "Messages per deal conversation")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)
	if cfg.IsProduction() {
		log.Fatalf("Refusing to seed a %s database", cfg.Env)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := bootstrap.Prepare(context.Background(), db, cfg, bootstrap.Options{ApplySchema: true}); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	res, err := seed.Seed(db, seed.Options{
		NumUsers:          *numUsers,
		GigsPerUser:       *gigs,
		DemandsPerUser:    *demands,
		NumDeals:          *numDeals,
		MessagesPerThread: *messages,
		ShouldClean:       *shouldClean,
		MaxDays:           defaults.MaxDays,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	middleware.Logger.Info("seed complete",
		slog.Int("profiles", res.Profiles),
		slog.Int("gigs", res.Gigs),
		slog.Int("demands", res.Demands),
		slog.Int("deals", res.Deals),
		slog.Int("messages", res.Messages),
	)
}
