package model

import "time"

// Listing is one item offered for sale. Rows are append-only: the Idx is the
// listing's creation position and never changes, and a listing is never
// deleted. BuyerUID is nil while the listing is unsold; once set it is never
// cleared or reassigned.
type Listing struct {
	Idx       uint64    `gorm:"column:idx;primaryKey"`
	Name      string    `gorm:"size:120;not null"`
	Price     uint64    `gorm:"not null"`
	SellerUID string    `gorm:"column:seller_uid;size:128;index;not null"`
	BuyerUID  *string   `gorm:"column:buyer_uid;size:128;index"`
	Rated     bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}

// Sold reports whether the listing has a buyer.
func (l *Listing) Sold() bool {
	return l.BuyerUID != nil
}
