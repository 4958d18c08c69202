// Command migrate manages the marketplace schema: profiles, gigs, demands,
// deals and messages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"rizq/internal/config"
	"rizq/internal/database"
	"rizq/internal/models"

	"gorm.io/gorm"
)

const usageText = `usage: migrate <command> [args]

commands:
  up              apply pending SQL migrations (refuses while open deals conflict)
  auto            run GORM automigration and ensure the open-deal index
  status          list migrations and open deal totals
  check           list item pairings held by more than one open deal
  down <version>  revert one migration`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usageText) }
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0))); cmd {
	case "up":
		if err := refuseOnConflicts(ctx, db); err != nil {
			return err
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "auto":
		if err := refuseOnConflicts(ctx, db); err != nil {
			return err
		}
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		return printStatus(ctx, db, cfg)
	case "check":
		conflicts, err := database.FindOpenDealConflicts(ctx, db)
		if err != nil {
			return err
		}
		printConflicts(conflicts)
		if len(conflicts) > 0 {
			return fmt.Errorf("%d item pairings have more than one open deal", len(conflicts))
		}
		log.Println("open deals: no conflicting pairings")
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %06d", version)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

// refuseOnConflicts stops a schema change that would fail on the open-deal
// index and names the deals to resolve first.
func refuseOnConflicts(ctx context.Context, db *gorm.DB) error {
	conflicts, err := database.FindOpenDealConflicts(ctx, db)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	printConflicts(conflicts)
	return fmt.Errorf("reject or complete the duplicate open deals above before migrating")
}

func printConflicts(conflicts []database.OpenDealConflict) {
	for _, c := range conflicts {
		log.Printf("conflict: %s <-> %s open_deals=%d first_deal=%d", c.LowKey, c.HighKey, c.Deals, c.FirstID)
	}
}

func printStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	log.Printf("schema mode=%s env=%s run_sql=%t run_auto=%t", status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate)
	for _, m := range database.GetMigrations() {
		state := "pending"
		if slices.Contains(status.AppliedVersions, m.Version) {
			state = "applied"
		}
		log.Printf("%-8s %s", state, m.String())
	}

	counts, err := database.CountDealsByStatus(ctx, db)
	if err != nil {
		return err
	}
	log.Printf("deals pending=%d active=%d completed=%d rejected=%d",
		counts[models.DealStatusPending], counts[models.DealStatusActive],
		counts[models.DealStatusCompleted], counts[models.DealStatusRejected])

	conflicts, err := database.FindOpenDealConflicts(ctx, db)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		log.Printf("warning: %d item pairings have more than one open deal; run `migrate check`", len(conflicts))
	}
	return nil
}
