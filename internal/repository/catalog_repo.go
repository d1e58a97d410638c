package repository

import (
	"errors"
	"fmt"

	"coursio/internal/domain"
	"coursio/internal/models"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogItem is the resolved form of (productType, productID): a tagged
// union with exactly one payload set for the catalog-backed kinds.
type CatalogItem struct {
	Type    string
	Course  *models.Course
	Digital *models.DigitalProduct
	Bundle  *models.Bundle
}

func (i *CatalogItem) Title() string {
	switch i.Type {
	case domain.ProductCourse:
		return i.Course.Title
	case domain.ProductDigital:
		return i.Digital.Title
	case domain.ProductBundle:
		return i.Bundle.Title
	}
	return ""
}

func (i *CatalogItem) Price() int64 {
	switch i.Type {
	case domain.ProductCourse:
		return i.Course.Price
	case domain.ProductDigital:
		return i.Digital.Price
	case domain.ProductBundle:
		return i.Bundle.Price
	}
	return 0
}

func (i *CatalogItem) Currency() string {
	switch i.Type {
	case domain.ProductCourse:
		return i.Course.Currency
	case domain.ProductDigital:
		return i.Digital.Currency
	case domain.ProductBundle:
		return i.Bundle.Currency
	}
	return ""
}

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Resolve loads the live product document for a ledger row. OTHER resolves
// to an empty item: it carries no catalog record, only ledger fields.
func (r *CatalogRepository) Resolve(productType string, productID uint) (*CatalogItem, error) {
	switch productType {
	case domain.ProductCourse:
		c, err := r.GetCourse(productID)
		if err != nil {
			return nil, err
		}
		return &CatalogItem{Type: domain.ProductCourse, Course: c}, nil
	case domain.ProductDigital:
		d, err := r.GetDigitalProduct(productID)
		if err != nil {
			return nil, err
		}
		return &CatalogItem{Type: domain.ProductDigital, Digital: d}, nil
	case domain.ProductBundle:
		b, err := r.GetBundle(productID)
		if err != nil {
			return nil, err
		}
		return &CatalogItem{Type: domain.ProductBundle, Bundle: b}, nil
	case domain.ProductOther:
		return &CatalogItem{Type: domain.ProductOther}, nil
	}
	return nil, fmt.Errorf("unknown product type %q", productType)
}

func (r *CatalogRepository) GetCourse(id uint) (*models.Course, error) {
	var c models.Course
	err := r.db.Preload("Modules.Lectures").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) GetDigitalProduct(id uint) (*models.DigitalProduct, error) {
	var d models.DigitalProduct
	err := r.db.First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *CatalogRepository) GetBundle(id uint) (*models.Bundle, error) {
	var b models.Bundle
	err := r.db.First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
