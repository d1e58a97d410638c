package repository

import (
	"coursio/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// AppendOrder adds an order id to the user's entitlement list. Idempotent:
// an already-present id leaves the row untouched.
func (r *UserRepository) AppendOrder(userID uint, orderID string) error {
	var u models.User
	if err := r.db.First(&u, userID).Error; err != nil {
		return err
	}
	if u.HasOrder(orderID) {
		return nil
	}
	u.SetOrderIDs(append(u.OrderIDs(), orderID))
	return r.db.Model(&u).Update("orders", u.Orders).Error
}

func (r *UserRepository) IncrementReconciled(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reconciled_payments", gorm.Expr("reconciled_payments + 1")).Error
}
