package repository

import (
	"errors"

	"coursio/internal/models"

	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(c *models.Contact) error {
	return r.db.Create(c).Error
}

func (r *ContactRepository) GetByEmail(email string) (*models.Contact, error) {
	var c models.Contact
	err := r.db.Preload("Tags").Where("email = ?", email).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepository) AddTag(contact *models.Contact, tag *models.Tag) error {
	return r.db.Model(contact).Association("Tags").Append(tag)
}

func (r *ContactRepository) RemoveTag(contact *models.Contact, tag *models.Tag) error {
	return r.db.Model(contact).Association("Tags").Delete(tag)
}

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) GetByName(name string) (*models.Tag, error) {
	var t models.Tag
	err := r.db.Where("name = ?", name).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepository) GetOrCreate(name string) (*models.Tag, error) {
	t, err := r.GetByName(name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	t = &models.Tag{Name: name}
	if err := r.db.Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
