package repository

import (
	"context"
	"errors"
	"time"

	"rizq/internal/models"

	"gorm.io/gorm"
)

// ItemPairing identifies the two items a deal negotiates over.
type ItemPairing struct {
	InitiatorItemType models.ItemType
	InitiatorItemID   uint
	RecipientItemType models.ItemType
	RecipientItemID   uint
}

// DealRepository defines the interface for deal data operations
type DealRepository interface {
	Create(ctx context.Context, deal *models.Deal) error
	GetByID(ctx context.Context, id uint) (*models.Deal, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Deal, error)
	// FindOpenByItems returns the pending or active deal over the pairing's two
	// items in either orientation, or nil.
	FindOpenByItems(ctx context.Context, pairing ItemPairing) (*models.Deal, error)
	// CompareAndSetStatus moves a deal from one status to another and reports
	// whether the row was still in the expected status.
	CompareAndSetStatus(ctx context.Context, id uint, from, to models.DealStatus) (bool, error)
}

type dealRepository struct {
	store
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *gorm.DB, opts ...Option) DealRepository {
	return &dealRepository{store: newStore(db, opts)}
}

func (r *dealRepository) Create(ctx context.Context, deal *models.Deal) error {
	onUnique := func(err error) error { return models.NewDuplicateDealError(err) }
	return r.run(ctx, "deal.create", onUnique, func(db *gorm.DB) error {
		return db.Create(deal).Error
	})
}

func (r *dealRepository) GetByID(ctx context.Context, id uint) (*models.Deal, error) {
	var deal models.Deal
	err := r.run(ctx, "deal.get", nil, func(db *gorm.DB) error {
		if err := db.First(&deal, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Deal", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *dealRepository) ListByUser(ctx context.Context, userID uint) ([]models.Deal, error) {
	deals := []models.Deal{}
	err := r.run(ctx, "deal.list_by_user", nil, func(db *gorm.DB) error {
		return db.Where("initiator_id = ? OR recipient_id = ?", userID, userID).
			Order("created_at DESC").
			Order("id DESC").
			Find(&deals).Error
	})
	if err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *dealRepository) FindOpenByItems(ctx context.Context, p ItemPairing) (*models.Deal, error) {
	var deals []models.Deal
	err := r.run(ctx, "deal.find_open", nil, func(db *gorm.DB) error {
		// Either party may have proposed the open deal, so match both orientations.
		return db.Where("status IN ?", []models.DealStatus{models.DealStatusPending, models.DealStatusActive}).
			Where("((initiator_item_type = ? AND initiator_item_id = ? AND recipient_item_type = ? AND recipient_item_id = ?)"+
				" OR (initiator_item_type = ? AND initiator_item_id = ? AND recipient_item_type = ? AND recipient_item_id = ?))",
				p.InitiatorItemType, p.InitiatorItemID, p.RecipientItemType, p.RecipientItemID,
				p.RecipientItemType, p.RecipientItemID, p.InitiatorItemType, p.InitiatorItemID,
			).
			Order("id ASC").
			Limit(1).Find(&deals).Error
	})
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, nil
	}
	return &deals[0], nil
}

func (r *dealRepository) CompareAndSetStatus(ctx context.Context, id uint, from, to models.DealStatus) (bool, error) {
	var affected int64
	err := r.run(ctx, "deal.update_status", nil, func(db *gorm.DB) error {
		res := db.Model(&models.Deal{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
