package repository

import (
	"context"
	"errors"

	"rizq/internal/models"

	"gorm.io/gorm"
)

// ItemRepository reads gigs and demands. Items are owned by the listing
// module; the deal engine only creates them for seeding.
type ItemRepository interface {
	GetGig(ctx context.Context, id uint) (*models.Gig, error)
	GetDemand(ctx context.Context, id uint) (*models.Demand, error)
	ListGigsByIDs(ctx context.Context, ids []uint) ([]models.Gig, error)
	ListDemandsByIDs(ctx context.Context, ids []uint) ([]models.Demand, error)
	ListByOwner(ctx context.Context, userID uint) (*models.UserItems, error)
	CreateGig(ctx context.Context, gig *models.Gig) error
	CreateDemand(ctx context.Context, demand *models.Demand) error
}

type itemRepository struct {
	store
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB, opts ...Option) ItemRepository {
	return &itemRepository{store: newStore(db, opts)}
}

func (r *itemRepository) GetGig(ctx context.Context, id uint) (*models.Gig, error) {
	var gig models.Gig
	err := r.run(ctx, "item.get_gig", nil, func(db *gorm.DB) error {
		if err := db.First(&gig, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Gig", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

func (r *itemRepository) GetDemand(ctx context.Context, id uint) (*models.Demand, error) {
	var demand models.Demand
	err := r.run(ctx, "item.get_demand", nil, func(db *gorm.DB) error {
		if err := db.First(&demand, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Demand", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &demand, nil
}

func (r *itemRepository) ListGigsByIDs(ctx context.Context, ids []uint) ([]models.Gig, error) {
	gigs := []models.Gig{}
	if len(ids) == 0 {
		return gigs, nil
	}
	err := r.run(ctx, "item.list_gigs", nil, func(db *gorm.DB) error {
		return db.Where("id IN ?", ids).Find(&gigs).Error
	})
	if err != nil {
		return nil, err
	}
	return gigs, nil
}

func (r *itemRepository) ListDemandsByIDs(ctx context.Context, ids []uint) ([]models.Demand, error) {
	demands := []models.Demand{}
	if len(ids) == 0 {
		return demands, nil
	}
	err := r.run(ctx, "item.list_demands", nil, func(db *gorm.DB) error {
		return db.Where("id IN ?", ids).Find(&demands).Error
	})
	if err != nil {
		return nil, err
	}
	return demands, nil
}

func (r *itemRepository) ListByOwner(ctx context.Context, userID uint) (*models.UserItems, error) {
	items := &models.UserItems{Gigs: []models.Gig{}, Demands: []models.Demand{}}
	err := r.run(ctx, "item.list_by_owner", nil, func(db *gorm.DB) error {
		if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&items.Gigs).Error; err != nil {
			return err
		}
		return db.Where("user_id = ?", userID).Order("created_at DESC").Find(&items.Demands).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) CreateGig(ctx context.Context, gig *models.Gig) error {
	return r.run(ctx, "item.create_gig", nil, func(db *gorm.DB) error {
		return db.Create(gig).Error
	})
}

func (r *itemRepository) CreateDemand(ctx context.Context, demand *models.Demand) error {
	return r.run(ctx, "item.create_demand", nil, func(db *gorm.DB) error {
		return db.Create(demand).Error
	})
}
