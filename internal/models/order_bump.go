package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderBump is a configured upsell shown alongside a target product.
// Read-only to the fulfillment flow except for the counters.
type OrderBump struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	TargetProductID   uint   `gorm:"not null;index" json:"target_product_id"`
	TargetProductType string `gorm:"size:20;not null" json:"target_product_type"`
	BumpProductID     uint   `gorm:"not null" json:"bump_product_id"` // digital product
	BumpPrice         int64  `gorm:"not null" json:"bump_price"`      // major currency units
	Currency          string `gorm:"size:3;default:'INR'" json:"currency"`
	IsActive          bool   `gorm:"default:true;index" json:"is_active"`

	Impressions int64 `gorm:"default:0" json:"impressions"`
	Conversions int64 `gorm:"default:0" json:"conversions"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OrderBump) TableName() string {
	return "order_bumps"
}
