package repository

import (
	"context"

	"github.com/contactbook/contactbook-api/internal/models"
)

// ContactRepository handles contact data access
type ContactRepository struct {
	source ContactDataSource
}

// NewContactRepository creates a new contact repository
func NewContactRepository(source ContactDataSource) *ContactRepository {
	return &ContactRepository{source: source}
}

// List returns one page of the owner's visible contacts
func (r *ContactRepository) List(ctx context.Context, params models.ContactListParams) (*models.ContactPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}

	contacts, total, err := r.source.ListContacts(ctx, params)
	if err != nil {
		return nil, err
	}
	return models.NewContactPage(contacts, params, total), nil
}

// GetByID retrieves a visible contact owned by ownerID
func (r *ContactRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Contact, error) {
	return r.source.GetContact(ctx, id, ownerID)
}

// Create stores a new contact
func (r *ContactRepository) Create(ctx context.Context, ct *models.Contact) (*models.Contact, error) {
	return r.source.CreateContact(ctx, ct)
}

// Update saves a contact
func (r *ContactRepository) Update(ctx context.Context, ct *models.Contact) (*models.Contact, error) {
	return r.source.UpdateContact(ctx, ct)
}

// Delete removes a contact owned by ownerID
func (r *ContactRepository) Delete(ctx context.Context, id, ownerID int64) error {
	return r.source.DeleteContact(ctx, id, ownerID)
}
