package repository

import (
	"errors"

	"coursio/internal/domain"
	"coursio/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("order_id = ?", orderID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindSettled returns a Success/Reconciled payment for the same buyer and
// product, excluding the given order. Nil result means no prior entitlement.
func (r *PaymentRepository) FindSettled(email string, productID uint, productType, excludeOrderID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where(
		"email = ? AND product_id = ? AND product_type = ? AND order_id <> ? AND status IN ?",
		email, productID, productType, excludeOrderID,
		[]string{domain.PaymentSuccess, domain.PaymentReconciled},
	).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) MarkFailed(orderID, reason string) error {
	return r.db.Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         domain.PaymentFailed,
			"failure_reason": reason,
		}).Error
}

func (r *PaymentRepository) ListByStatus(statuses []string, limit int) ([]models.Payment, error) {
	var out []models.Payment
	q := r.db.Where("status IN ?", statuses).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
