package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type DigitalProduct struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"` // major currency units
	Currency    string `gorm:"size:3;default:'INR'" json:"currency"`
	FileURL     string `gorm:"size:512" json:"file_url"`
	CoverURL    string `gorm:"size:512" json:"cover_url"`
	Active      bool   `gorm:"default:true;index" json:"active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DigitalProduct) TableName() string {
	return "digital_products"
}

// Bundle groups several courses under one price. Member courses are
// referenced by id, not embedded.
type Bundle struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	Currency    string `gorm:"size:3;default:'INR'" json:"currency"`
	CourseIDs   string `gorm:"type:text" json:"-"` // JSON array of course ids
	Active      bool   `gorm:"default:true;index" json:"active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Bundle) TableName() string {
	return "bundles"
}

func (b *Bundle) CourseIDList() []uint {
	if b.CourseIDs == "" {
		return nil
	}
	var ids []uint
	_ = json.Unmarshal([]byte(b.CourseIDs), &ids)
	return ids
}
