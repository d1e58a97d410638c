package repository

import (
	"time"

	"coursio/internal/models"

	"gorm.io/gorm"
)

type FailedPaymentRepository struct {
	db *gorm.DB
}

func NewFailedPaymentRepository(db *gorm.DB) *FailedPaymentRepository {
	return &FailedPaymentRepository{db: db}
}

func (r *FailedPaymentRepository) Create(fp *models.FailedPayment) error {
	return r.db.Create(fp).Error
}

func (r *FailedPaymentRepository) GetByID(id uint) (*models.FailedPayment, error) {
	var fp models.FailedPayment
	err := r.db.First(&fp, id).Error
	if err != nil {
		return nil, err
	}
	return &fp, nil
}

func (r *FailedPaymentRepository) List(resolved *bool, limit int) ([]models.FailedPayment, error) {
	var out []models.FailedPayment
	q := r.db.Order("created_at DESC")
	if resolved != nil {
		q = q.Where("resolved = ?", *resolved)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *FailedPaymentRepository) Resolve(id uint, resolvedBy, notes string) error {
	now := time.Now()
	return r.db.Model(&models.FailedPayment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":         true,
			"resolved_at":      &now,
			"resolved_by":      resolvedBy,
			"resolution_notes": notes,
		}).Error
}

// MarkResolvedByOrder resolves every unresolved record sharing the order id.
func (r *FailedPaymentRepository) MarkResolvedByOrder(orderID, resolvedBy, notes string) error {
	now := time.Now()
	return r.db.Model(&models.FailedPayment{}).
		Where("order_id = ? AND resolved = ?", orderID, false).
		Updates(map[string]interface{}{
			"resolved":         true,
			"resolved_at":      &now,
			"resolved_by":      resolvedBy,
			"resolution_notes": notes,
		}).Error
}
