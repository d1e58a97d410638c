package models

import "time"

// FailedPayment is an append-only diagnostic record written whenever a
// fulfillment step fails. It has its own lifecycle, independent of the
// ledger row, and is never hard-deleted.
type FailedPayment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     string `gorm:"size:64;index;not null" json:"order_id"`
	ProductID   uint   `json:"product_id"`
	ProductType string `gorm:"size:20" json:"product_type"`
	Amount      int64  `json:"amount"`
	Currency    string `gorm:"size:3" json:"currency"`

	Error      string `gorm:"size:1024" json:"error"`
	ErrorCode  string `gorm:"size:64" json:"error_code"`
	StackTrace string `gorm:"type:text" json:"-"`
	Context    string `gorm:"size:32;index" json:"context"` // payment_processing, order_verification, ...

	CustomerEmail    string `gorm:"size:255;index" json:"customer_email"`
	CustomerPhone    string `gorm:"size:20" json:"customer_phone"`
	CustomerUsername string `gorm:"size:64" json:"customer_username"`
	CustomerUserID   uint   `json:"customer_user_id"`

	Resolved        bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy      string     `gorm:"size:64" json:"resolved_by,omitempty"`
	ResolutionNotes string     `gorm:"size:1024" json:"resolution_notes,omitempty"`

	PaymentData string `gorm:"type:text" json:"-"` // opaque replay payload for retry

	CreatedAt time.Time `json:"created_at"`
}

func (FailedPayment) TableName() string {
	return "failed_payments"
}
