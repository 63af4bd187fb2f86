package model

import "time"

// Reputation accumulates the ratings a seller has received. A row appears on
// the seller's first rating and is updated in place afterwards; Count always
// equals the number of that seller's listings with Rated == true.
type Reputation struct {
	SellerUID  string    `gorm:"column:seller_uid;primaryKey;size:128"`
	TotalScore uint64    `gorm:"column:total_score;not null;default:0"`
	Count      uint64    `gorm:"column:count;not null;default:0"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Reputation) TableName() string {
	return "reputations"
}

// Average is the truncating integer average, defined only when Count > 0.
func (r *Reputation) Average() uint64 {
	if r.Count == 0 {
		return 0
	}
	return r.TotalScore / r.Count
}
