package repository

import (
	"errors"

	"coursio/internal/models"

	"gorm.io/gorm"
)

var ErrBumpNotFound = errors.New("order bump not found")

type OrderBumpRepository struct {
	db *gorm.DB
}

func NewOrderBumpRepository(db *gorm.DB) *OrderBumpRepository {
	return &OrderBumpRepository{db: db}
}

func (r *OrderBumpRepository) GetActive(id uint) (*models.OrderBump, error) {
	var b models.OrderBump
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBumpNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *OrderBumpRepository) IncrementImpressions(id uint) error {
	return r.db.Model(&models.OrderBump{}).
		Where("id = ?", id).
		UpdateColumn("impressions", gorm.Expr("impressions + 1")).Error
}

func (r *OrderBumpRepository) IncrementConversions(id uint) error {
	return r.db.Model(&models.OrderBump{}).
		Where("id = ?", id).
		UpdateColumn("conversions", gorm.Expr("conversions + 1")).Error
}
