package repository

import (
	"context"

	"github.com/hyoshino/fruitledger/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReputationRepository interface {
	Save(ctx context.Context, rep *model.Reputation) error
	ListAll(ctx context.Context) ([]model.Reputation, error)
	Get(ctx context.Context, sellerUID string) (*model.Reputation, error)
	SetDB(db *gorm.DB)
}

type reputationRepository struct {
	db *gorm.DB
}

func NewReputationRepository(db *gorm.DB) ReputationRepository {
	return &reputationRepository{db: db}
}

func (r *reputationRepository) Save(ctx context.Context, rep *model.Reputation) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seller_uid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_score": rep.TotalScore,
			"count":       rep.Count,
		}),
	}).Create(rep).Error
}

func (r *reputationRepository) ListAll(ctx context.Context) ([]model.Reputation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var reps []model.Reputation
	if err := r.db.WithContext(ctx).Find(&reps).Error; err != nil {
		return nil, err
	}
	return reps, nil
}

func (r *reputationRepository) Get(ctx context.Context, sellerUID string) (*model.Reputation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rep model.Reputation
	if err := r.db.WithContext(ctx).Where("seller_uid = ?", sellerUID).First(&rep).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reputationRepository) SetDB(db *gorm.DB) {
	r.db = db
}
