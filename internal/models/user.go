package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// User is the buyer identity. Created lazily on first successful payment
// when no account exists for the email.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:64" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone        string `gorm:"size:20" json:"phone"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         string `gorm:"size:20;not null;default:'STUDENT'" json:"role"`

	// Orders is a JSON array of entitled order ids, append-only and deduped.
	Orders             string `gorm:"type:text" json:"-"`
	ReconciledPayments int    `gorm:"default:0" json:"reconciled_payments"`

	ResetTokenHash      string     `gorm:"size:64" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) OrderIDs() []string {
	if u.Orders == "" {
		return nil
	}
	var ids []string
	_ = json.Unmarshal([]byte(u.Orders), &ids)
	return ids
}

func (u *User) HasOrder(orderID string) bool {
	for _, id := range u.OrderIDs() {
		if id == orderID {
			return true
		}
	}
	return false
}

func (u *User) SetOrderIDs(ids []string) {
	b, _ := json.Marshal(ids)
	u.Orders = string(b)
}
