package repository

import (
	"context"

	"github.com/hyoshino/fruitledger/internal/model"
	"gorm.io/gorm"
)

// LedgerStore is the engine's write-through persistence. The engine stays
// authoritative in memory; this store replays committed mutations into MySQL
// and reloads them on startup.
type LedgerStore struct {
	listings    ListingRepository
	reputations ReputationRepository
	db          *gorm.DB
}

func NewLedgerStore(db *gorm.DB, listings ListingRepository, reputations ReputationRepository) *LedgerStore {
	return &LedgerStore{listings: listings, reputations: reputations, db: db}
}

func (s *LedgerStore) SaveListing(ctx context.Context, listing *model.Listing) error {
	return s.listings.Save(ctx, listing)
}

// RecordRating persists the listing's rated flag and the seller's reputation
// row as one transaction. A failure between the two must never be visible.
func (s *LedgerStore) RecordRating(ctx context.Context, listing *model.Listing, rep *model.Reputation) error {
	if s.db == nil {
		return ErrDBNotReady
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewListingRepository(tx).Save(ctx, listing); err != nil {
			return err
		}
		return NewReputationRepository(tx).Save(ctx, rep)
	})
}

// Load returns the persisted ledger state in creation order.
func (s *LedgerStore) Load(ctx context.Context) ([]model.Listing, []model.Reputation, error) {
	listings, err := s.listings.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	reps, err := s.reputations.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return listings, reps, nil
}

func (s *LedgerStore) SetDB(db *gorm.DB) {
	s.db = db
	s.listings.SetDB(db)
	s.reputations.SetDB(db)
}
