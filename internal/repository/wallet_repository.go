package repository

import (
	"context"
	"errors"

	"github.com/hyoshino/fruitledger/internal/model"
	"github.com/hyoshino/fruitledger/internal/settlement"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository persists caller balances. It satisfies settlement.Wallet,
// so a DB-backed server plugs it straight into the engine.
type WalletRepository interface {
	settlement.Wallet
	SetDB(db *gorm.DB)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

// Transfer debits from and credits to inside one transaction. The debit is a
// guarded update: zero rows affected means the balance was insufficient.
func (r *walletRepository) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.WalletAccount{}).
			Where("uid = ? AND balance >= ?", from, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return settlement.ErrInsufficientFunds
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}),
		}).Create(&model.WalletAccount{UID: to, Balance: amount}).Error
	})
}

func (r *walletRepository) Deposit(ctx context.Context, uid string, amount uint64) (uint64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}),
	}).Create(&model.WalletAccount{UID: uid, Balance: amount}).Error
	if err != nil {
		return 0, err
	}
	return r.Balance(ctx, uid)
}

func (r *walletRepository) Balance(ctx context.Context, uid string) (uint64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var acct model.WalletAccount
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Balance, nil
}

func (r *walletRepository) SetDB(db *gorm.DB) {
	r.db = db
}
