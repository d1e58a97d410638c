package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Payment is one purchase attempt in the ledger. order_id carries a unique
// index so a gateway order can never produce two ledger rows.
type Payment struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	OrderID          string `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	GatewayPaymentID string `gorm:"size:64;index" json:"gateway_payment_id"`
	Gateway          string `gorm:"size:20;not null" json:"gateway"` // razorpay | cashfree

	// Buyer fields are denormalized at payment time, not a live reference.
	Username string `gorm:"size:64" json:"username"`
	Email    string `gorm:"size:255;not null;index" json:"email"`
	Phone    string `gorm:"size:20" json:"phone"`

	ProductID       uint   `gorm:"not null;index" json:"product_id"`
	ProductType     string `gorm:"size:20;not null" json:"product_type"` // COURSE | DIGITAL_PRODUCT | BUNDLE | OTHER
	ProductSnapshot string `gorm:"type:text" json:"product_snapshot"`    // JSON, frozen at purchase time

	Amount   int64  `gorm:"not null" json:"amount"` // major currency units
	Currency string `gorm:"size:3;default:'INR'" json:"currency"`

	Status        string `gorm:"size:20;not null;index" json:"status"` // PENDING, SUCCESS, FAILED, RECONCILED
	FailureReason string `gorm:"size:512" json:"failure_reason,omitempty"`

	IsOrderBump bool   `gorm:"default:false" json:"is_order_bump"`
	ParentOrder string `gorm:"size:64;index" json:"parent_order,omitempty"`
	BumpIDs     string `gorm:"type:text" json:"-"` // JSON array of order-bump ids chosen at checkout

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// ProductSnapshot is the immutable copy of product fields taken at purchase
// time so later catalog edits never alter historical receipts.
type ProductSnapshot struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	CoverURL    string `json:"cover_url,omitempty"`
	Lectures    int    `json:"lectures,omitempty"`  // courses
	FileURL     string `json:"file_url,omitempty"`  // digital products
	CourseIDs   []uint `json:"course_ids,omitempty"` // bundles
}

func (p *Payment) SetSnapshot(s ProductSnapshot) {
	b, _ := json.Marshal(s)
	p.ProductSnapshot = string(b)
}

func (p *Payment) Snapshot() ProductSnapshot {
	var s ProductSnapshot
	_ = json.Unmarshal([]byte(p.ProductSnapshot), &s)
	return s
}

// BumpIDList decodes the order-bump ids recorded at checkout.
func (p *Payment) BumpIDList() []uint {
	if p.BumpIDs == "" {
		return nil
	}
	var ids []uint
	_ = json.Unmarshal([]byte(p.BumpIDs), &ids)
	return ids
}

func (p *Payment) SetBumpIDs(ids []uint) {
	if len(ids) == 0 {
		p.BumpIDs = ""
		return
	}
	b, _ := json.Marshal(ids)
	p.BumpIDs = string(b)
}
