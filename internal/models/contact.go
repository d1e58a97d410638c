package models

import (
	"time"

	"gorm.io/gorm"
)

// Contact is the CRM mirror of a buyer. Its status tag tracks the most
// recent payment outcome.
type Contact struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username string `gorm:"size:64" json:"username"`
	Phone    string `gorm:"size:20" json:"phone"`

	Tags []Tag `gorm:"many2many:contact_tags" json:"tags,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Contact) TableName() string {
	return "contacts"
}

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}
