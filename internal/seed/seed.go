package seed

import (
	"fmt"
	"log/slog"
	"time"

	"rizq/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers          int
	GigsPerUser       int
	DemandsPerUser    int
	NumDeals          int
	MessagesPerThread int
	ShouldClean       bool
	MaxDays           int
}

// DefaultOptions is a small marketplace suitable for local development.
func DefaultOptions() Options {
	return Options{
		NumUsers:          12,
		GigsPerUser:       2,
		DemandsPerUser:    1,
		NumDeals:          10,
		MessagesPerThread: 6,
		ShouldClean:       true,
		MaxDays:           60,
	}
}

// Result counts what a run created.
type Result struct {
	Profiles int
	Gigs     int
	Demands  int
	Deals    int
	Messages int
}

// dealStatusCycle spreads seeded deals across the lifecycle.
var dealStatusCycle = []models.DealStatus{
	models.DealStatusPending,
	models.DealStatusActive,
	models.DealStatusPending,
	models.DealStatusCompleted,
	models.DealStatusRejected,
}

type lister struct {
	profile *models.Profile
	gigs    []*models.Gig
	demands []*models.Demand
}

// Seed populates the database with profiles, listings, deals and the
// message threads that accompany them.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	if opts.NumUsers < 2 {
		return nil, fmt.Errorf("seed needs at least 2 users, got %d", opts.NumUsers)
	}
	slog.Info("starting database seeding", slog.Int("users", opts.NumUsers), slog.Int("deals", opts.NumDeals))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			slog.Warn("could not clear existing data, continuing", slog.Any("error", err))
		}
	}

	f := NewFactory(db, FactoryOptions{MaxDays: opts.MaxDays})
	res := &Result{}

	listers := make([]*lister, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		p, err := f.CreateProfile()
		if err != nil {
			return res, fmt.Errorf("failed to create profiles: %w", err)
		}
		l := &lister{profile: p}
		for j := 0; j < opts.GigsPerUser; j++ {
			g, err := f.CreateGig(p)
			if err != nil {
				return res, fmt.Errorf("failed to create gigs: %w", err)
			}
			l.gigs = append(l.gigs, g)
		}
		for j := 0; j < opts.DemandsPerUser; j++ {
			d, err := f.CreateDemand(p)
			if err != nil {
				return res, fmt.Errorf("failed to create demands: %w", err)
			}
			l.demands = append(l.demands, d)
		}
		listers = append(listers, l)
		res.Profiles++
		res.Gigs += len(l.gigs)
		res.Demands += len(l.demands)
	}
	slog.Info("profiles and listings created",
		slog.Int("profiles", res.Profiles), slog.Int("gigs", res.Gigs), slog.Int("demands", res.Demands))

	threads := map[[2]uint]bool{}
	paired := map[[2]uint]bool{}
	for i := 0; i < opts.NumDeals; i++ {
		seller := listers[i%len(listers)]
		buyer := listers[(i+1+i/len(listers))%len(listers)]
		if seller == buyer || len(seller.gigs) == 0 || len(buyer.demands) == 0 {
			continue
		}
		gig := seller.gigs[(i/len(listers))%len(seller.gigs)]
		demand := buyer.demands[(i/len(listers))%len(buyer.demands)]
		if paired[[2]uint{gig.ID, demand.ID}] {
			continue
		}
		paired[[2]uint{gig.ID, demand.ID}] = true
		status := dealStatusCycle[i%len(dealStatusCycle)]

		deal, err := f.CreateDeal(seller.profile, gig, buyer.profile, demand, func(d *models.Deal) {
			d.Status = status
		})
		if err != nil {
			return res, fmt.Errorf("failed to create deals: %w", err)
		}
		res.Deals++

		if _, err := f.CreateMessage(seller.profile, buyer.profile, func(m *models.Message) {
			m.Content = deal.Message
			m.CreatedAt = deal.CreatedAt
			m.IsRead = status != models.DealStatusPending
		}); err != nil {
			return res, fmt.Errorf("failed to create deal message: %w", err)
		}
		res.Messages++
		threads[pairKey(seller.profile.ID, buyer.profile.ID)] = true

		n, err := seedThread(f, seller.profile, buyer.profile, deal.CreatedAt, opts.MessagesPerThread)
		res.Messages += n
		if err != nil {
			return res, err
		}
	}

	slog.Info("database seeding completed",
		slog.Int("deals", res.Deals), slog.Int("messages", res.Messages), slog.Int("threads", len(threads)))
	return res, nil
}

// seedThread writes an alternating conversation after start. The final two
// messages stay unread so inboxes show badges.
func seedThread(f *Factory, a, b *models.Profile, start time.Time, count int) (int, error) {
	at := start
	for i := 0; i < count; i++ {
		from, to := a, b
		if i%2 == 1 {
			from, to = b, a
		}
		at = at.Add(time.Duration(5+f.rnd.Intn(240)) * time.Minute)
		if at.After(time.Now()) {
			at = time.Now()
		}
		sentAt := at
		unread := i >= count-2
		if _, err := f.CreateMessage(from, to, func(m *models.Message) {
			m.CreatedAt = sentAt
			m.IsRead = !unread
			if !unread {
				m.ReadAt = &sentAt
			}
		}); err != nil {
			return i, fmt.Errorf("failed to create messages: %w", err)
		}
	}
	return count, nil
}

func pairKey(a, b uint) [2]uint {
	if a > b {
		a, b = b, a
	}
	return [2]uint{a, b}
}

// seedTables lists tables in dependency order for cleanup.
var seedTables = []string{"messages", "deals", "gigs", "demands", "profiles"}

func clearData(db *gorm.DB) error {
	slog.Info("clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE messages, deals, gigs, demands, profiles RESTART IDENTITY CASCADE;`).Error
	}
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
