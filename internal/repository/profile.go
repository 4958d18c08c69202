package repository

import (
	"context"
	"errors"

	"rizq/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository reads public user profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	store
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB, opts ...Option) ProfileRepository {
	return &profileRepository{store: newStore(db, opts)}
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.run(ctx, "profile.get", nil, func(db *gorm.DB) error {
		if err := db.First(&profile, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Profile", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.run(ctx, "profile.list_by_ids", nil, func(db *gorm.DB) error {
		return db.Where("id IN ?", ids).Find(&profiles).Error
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.run(ctx, "profile.create", func(err error) error {
		return models.NewValidationError("Username already taken")
	}, func(db *gorm.DB) error {
		return db.Create(profile).Error
	})
}
