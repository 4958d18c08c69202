// Package seed provides helpers to create test and demo data for the
// marketplace database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"rizq/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// FactoryOptions tunes generated data.
type FactoryOptions struct {
	// DryRun assigns synthetic IDs instead of writing to the database.
	DryRun bool
	// MaxDays bounds how far back created_at timestamps are spread.
	MaxDays int
}

var categories = []string{
	"Design", "Development", "Writing", "Translation", "Marketing",
	"Video", "Audio", "Data", "Consulting", "Photography",
}

// Factory builds marketplace entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts FactoryOptions
	rnd  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{
		db:     db,
		opts:   opts,
		rnd:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
}

// pastTime returns a timestamp spread over the last MaxDays.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rnd.Intn(f.opts.MaxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(kind string, id *uint, value any) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		slog.Debug("dry-run create", slog.String("kind", kind), slog.Uint64("id", uint64(*id)))
		return nil
	}
	if err := f.db.Create(value).Error; err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

// CreateProfile constructs and persists a sample profile.
// Optional override functions may modify the generated profile before saving.
func (f *Factory) CreateProfile(overrides ...func(*models.Profile)) (*models.Profile, error) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s.%s%d", first, last, gofakeit.Number(100, 9999)))
	p := &models.Profile{
		Username:  username,
		FullName:  first + " " + last,
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Bio:       gofakeit.Sentence(12),
	}
	if f.rnd.Intn(3) == 0 {
		p.CompanyName = gofakeit.Company()
	}
	for _, override := range overrides {
		override(p)
	}
	if err := f.persist("profile", &p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateGig constructs and persists a gig offered by owner.
func (f *Factory) CreateGig(owner *models.Profile, overrides ...func(*models.Gig)) (*models.Gig, error) {
	category := categories[f.rnd.Intn(len(categories))]
	g := &models.Gig{
		UserID:       owner.ID,
		Title:        fmt.Sprintf("I will %s %s", strings.ToLower(gofakeit.Verb()), strings.ToLower(gofakeit.BuzzWord())),
		Description:  gofakeit.Paragraph(1, 3, 10, " "),
		Category:     category,
		Price:        float64(gofakeit.Number(5, 500)),
		DeliveryDays: gofakeit.Number(1, 21),
		ImageURL:     fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		CreatedAt:    f.pastTime(),
	}
	for _, override := range overrides {
		override(g)
	}
	if err := f.persist("gig", &g.ID, g); err != nil {
		return nil, err
	}
	return g, nil
}

// CreateDemand constructs and persists a demand posted by owner.
func (f *Factory) CreateDemand(owner *models.Profile, overrides ...func(*models.Demand)) (*models.Demand, error) {
	deadline := time.Now().Add(time.Duration(gofakeit.Number(3, 60)) * 24 * time.Hour)
	d := &models.Demand{
		UserID:      owner.ID,
		Title:       fmt.Sprintf("Looking for %s %s", strings.ToLower(gofakeit.JobLevel()), strings.ToLower(gofakeit.JobTitle())),
		Description: gofakeit.Paragraph(1, 2, 12, " "),
		Category:    categories[f.rnd.Intn(len(categories))],
		Budget:      float64(gofakeit.Number(20, 2000)),
		Deadline:    &deadline,
		CreatedAt:   f.pastTime(),
	}
	for _, override := range overrides {
		override(d)
	}
	if err := f.persist("demand", &d.ID, d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateDeal persists a deal in which initiator offers a gig for the
// recipient's demand.
func (f *Factory) CreateDeal(initiator *models.Profile, gig *models.Gig, recipient *models.Profile, demand *models.Demand, overrides ...func(*models.Deal)) (*models.Deal, error) {
	d := &models.Deal{
		InitiatorID:       initiator.ID,
		RecipientID:       recipient.ID,
		InitiatorItemType: models.ItemTypeGig,
		InitiatorItemID:   gig.ID,
		RecipientItemType: models.ItemTypeDemand,
		RecipientItemID:   demand.ID,
		Status:            models.DealStatusPending,
		Message:           gofakeit.Sentence(14),
		CreatedAt:         f.pastTime(),
	}
	for _, override := range overrides {
		override(d)
	}
	if err := f.persist("deal", &d.ID, d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateMessage persists a direct message from sender to recipient.
func (f *Factory) CreateMessage(sender, recipient *models.Profile, overrides ...func(*models.Message)) (*models.Message, error) {
	m := &models.Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Content:     gofakeit.Sentence(gofakeit.Number(3, 18)),
		CreatedAt:   f.pastTime(),
	}
	for _, override := range overrides {
		override(m)
	}
	if err := f.persist("message", &m.ID, m); err != nil {
		return nil, err
	}
	return m, nil
}
