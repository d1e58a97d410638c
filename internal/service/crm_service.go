package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"coursio/internal/domain"
	"coursio/internal/models"

	"gorm.io/gorm"
)

type ContactStore interface {
	Create(c *models.Contact) error
	GetByEmail(email string) (*models.Contact, error)
	AddTag(contact *models.Contact, tag *models.Tag) error
	RemoveTag(contact *models.Contact, tag *models.Tag) error
}

type TagStore interface {
	GetByName(name string) (*models.Tag, error)
	GetOrCreate(name string) (*models.Tag, error)
}

// CRMService mirrors payment outcomes onto contact tags. The payment status
// tags form one mutually exclusive family: a contact carries exactly one of
// them at a time.
type CRMService struct {
	contacts ContactStore
	tags     TagStore
}

func NewCRMService(contacts ContactStore, tags TagStore) *CRMService {
	return &CRMService{contacts: contacts, tags: tags}
}

func (s *CRMService) ApplyPaymentStatus(ctx context.Context, email, status, username, phone string) error {
	if email == "" {
		return errors.New("crm: email required")
	}

	contact, err := s.contacts.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		contact = &models.Contact{Email: email, Username: username, Phone: phone}
		if err := s.contacts.Create(contact); err != nil {
			return fmt.Errorf("crm: create contact: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("crm: lookup contact: %w", err)
	}

	target, err := s.tags.GetOrCreate(status)
	if err != nil {
		return fmt.Errorf("crm: tag %s: %w", status, err)
	}

	// strip the rest of the family before applying the new stage
	for _, name := range domain.PaymentStatusTags {
		if name == status {
			continue
		}
		t, err := s.tags.GetByName(name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("crm: tag lookup %s: %w", name, err)
		}
		if err := s.contacts.RemoveTag(contact, t); err != nil {
			return fmt.Errorf("crm: remove tag %s: %w", name, err)
		}
	}

	if err := s.contacts.AddTag(contact, target); err != nil {
		return fmt.Errorf("crm: add tag %s: %w", status, err)
	}
	log.Printf("[CRM] %s tagged %s", email, status)
	return nil
}
