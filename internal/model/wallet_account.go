package model

import "time"

// WalletAccount holds a caller's spendable balance in the smallest currency
// unit. The settlement layer debits buyers and credits sellers against it.
type WalletAccount struct {
	UID       string    `gorm:"column:uid;primaryKey;size:128"`
	Balance   uint64    `gorm:"column:balance;not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (WalletAccount) TableName() string {
	return "wallet_accounts"
}
