package service

import (
	"context"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"
)

// ContactService manages a user's saved payees.
type ContactService struct {
	store repository.Store
}

// NewContactService wires the contact book.
func NewContactService(store repository.Store) *ContactService {
	return &ContactService{store: store}
}

// Create saves a payee handle under a display name. The handle must exist
// and cannot belong to the owner.
func (s *ContactService) Create(ctx context.Context, ownerID uint, displayName, handle string) (*domain.Contact, error) {
	address, err := s.store.Addresses().FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if address.UserID == ownerID {
		return nil, domain.ErrSelfContact
	}

	contact := &domain.Contact{
		OwnerID:     ownerID,
		DisplayName: displayName,
		Handle:      handle,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Contacts().Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// List returns the owner's contacts, newest first.
func (s *ContactService) List(ctx context.Context, ownerID uint) ([]domain.Contact, error) {
	return s.store.Contacts().ListByOwner(ctx, ownerID)
}

// Delete removes one of the owner's contacts.
func (s *ContactService) Delete(ctx context.Context, ownerID, contactID uint) error {
	contact, err := s.store.Contacts().FindByIDAndOwner(ctx, contactID, ownerID)
	if err != nil {
		return err
	}
	return s.store.Contacts().Delete(ctx, contact)
}
