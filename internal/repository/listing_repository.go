package repository

import (
	"context"
	"errors"

	"github.com/hyoshino/fruitledger/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDBNotReady = errors.New("database not initialized")

type ListingRepository interface {
	Save(ctx context.Context, listing *model.Listing) error
	ListAll(ctx context.Context) ([]model.Listing, error)
	SetDB(db *gorm.DB)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Save upserts by idx so both creation and later mutations (buyer, price,
// rated flag) go through the same call.
func (r *listingRepository) Save(ctx context.Context, listing *model.Listing) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idx"}},
		UpdateAll: true,
	}).Create(listing).Error
}

func (r *listingRepository) ListAll(ctx context.Context) ([]model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var listings []model.Listing
	if err := r.db.WithContext(ctx).Order("idx asc").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) SetDB(db *gorm.DB) {
	r.db = db
}
