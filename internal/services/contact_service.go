package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/repository"
	"github.com/contactbook/contactbook-api/internal/validation"
	apperrors "github.com/contactbook/contactbook-api/pkg/errors"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/contactbook/contactbook-api/pkg/slug"
	"github.com/contactbook/contactbook-api/pkg/storage"
	"github.com/contactbook/contactbook-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DeleteConfirmation is the only value that confirms a delete
const DeleteConfirmation = "yes"

const pictureCleanupTimeout = 30 * time.Second

// ContactService manages a user's address book
type ContactService struct {
	contacts  repository.ContactRepositoryInterface
	validator SubmissionValidator
	storage   PictureStorage
	now       func() time.Time
}

// NewContactService creates a new ContactService. storage may be nil, in which
// case submissions carrying a picture are refused with ErrUnavailable.
func NewContactService(contacts repository.ContactRepositoryInterface, validator SubmissionValidator, storage PictureStorage) *ContactService {
	return &ContactService{
		contacts:  contacts,
		validator: validator,
		storage:   storage,
		now:       time.Now,
	}
}

// List returns one page of the owner's visible contacts. Pages past the end
// fall back to the last page.
func (s *ContactService) List(ctx context.Context, params models.ContactListParams) (*models.ContactPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}

	page, err := s.contacts.List(ctx, params)
	if err != nil {
		return nil, err
	}

	if page.Total > 0 && page.Page > page.TotalPages {
		params.Page = page.TotalPages
		return s.contacts.List(ctx, params)
	}
	return page, nil
}

// Get returns a single visible contact of the owner
func (s *ContactService) Get(ctx context.Context, id, ownerID int64) (*models.Contact, error) {
	return s.contacts.GetByID(ctx, id, ownerID)
}

// Create validates a submission and stores a new contact
func (s *ContactService) Create(ctx context.Context, ownerID int64, sub validation.ContactSubmission) (_ *models.Contact, err error) {
	ctx, span := tracing.StartSpan(ctx, "ContactService.Create", attribute.Int64("owner_id", ownerID))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	clean, err := s.validator.ValidateContact(ctx, sub)
	if err != nil {
		metrics.ContactMutations.WithLabelValues("create", failureStatus(err)).Inc()
		return nil, err
	}

	contact := &models.Contact{OwnerID: ownerID, Show: true}
	applySubmission(contact, clean)

	if clean.Picture != nil {
		if err := s.uploadPicture(ctx, contact, clean.Picture); err != nil {
			metrics.ContactMutations.WithLabelValues("create", failureStatus(err)).Inc()
			return nil, err
		}
	}

	created, err := s.contacts.Create(ctx, contact)
	if err != nil {
		metrics.ContactMutations.WithLabelValues("create", failureStatus(err)).Inc()
		logger.Error("Failed to create contact", zap.Error(err), zap.Int64("owner_id", ownerID))
		s.removePicture(contact.PictureKey)
		return nil, err
	}

	metrics.ContactMutations.WithLabelValues("create", "success").Inc()
	logger.Info("Contact created", zap.Int64("contact_id", created.ID), zap.Int64("owner_id", ownerID))

	return created, nil
}

// Update validates a submission and overwrites an existing contact
func (s *ContactService) Update(ctx context.Context, id, ownerID int64, sub validation.ContactSubmission) (_ *models.Contact, err error) {
	ctx, span := tracing.StartSpan(ctx, "ContactService.Update",
		attribute.Int64("contact_id", id),
		attribute.Int64("owner_id", ownerID))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	existing, err := s.contacts.GetByID(ctx, id, ownerID)
	if err != nil {
		metrics.ContactMutations.WithLabelValues("update", failureStatus(err)).Inc()
		return nil, err
	}

	clean, err := s.validator.ValidateContact(ctx, sub)
	if err != nil {
		metrics.ContactMutations.WithLabelValues("update", failureStatus(err)).Inc()
		return nil, err
	}

	oldKey := existing.PictureKey
	contact := *existing
	applySubmission(&contact, clean)

	switch {
	case clean.Picture != nil:
		if err := s.uploadPicture(ctx, &contact, clean.Picture); err != nil {
			metrics.ContactMutations.WithLabelValues("update", failureStatus(err)).Inc()
			return nil, err
		}
	case clean.ClearPicture:
		contact.PictureKey = ""
		contact.PictureURL = ""
	}

	updated, err := s.contacts.Update(ctx, &contact)
	if err != nil {
		metrics.ContactMutations.WithLabelValues("update", failureStatus(err)).Inc()
		logger.Error("Failed to update contact", zap.Error(err), zap.Int64("contact_id", id))
		if contact.PictureKey != oldKey {
			s.removePicture(contact.PictureKey)
		}
		return nil, err
	}

	if oldKey != "" && oldKey != contact.PictureKey {
		s.removePicture(oldKey)
	}

	metrics.ContactMutations.WithLabelValues("update", "success").Inc()
	logger.Info("Contact updated", zap.Int64("contact_id", id), zap.Int64("owner_id", ownerID))

	return updated, nil
}

// Delete removes a contact once the caller confirmed with "yes". Any other
// confirmation leaves the contact in place and returns it with deleted=false.
func (s *ContactService) Delete(ctx context.Context, id, ownerID int64, confirmation string) (_ *models.Contact, _ bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "ContactService.Delete",
		attribute.Int64("contact_id", id),
		attribute.Int64("owner_id", ownerID))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	contact, err := s.contacts.GetByID(ctx, id, ownerID)
	if err != nil {
		metrics.ContactMutations.WithLabelValues("delete", failureStatus(err)).Inc()
		return nil, false, err
	}

	if confirmation != DeleteConfirmation {
		metrics.ContactMutations.WithLabelValues("delete", "unconfirmed").Inc()
		return contact, false, nil
	}

	if err := s.contacts.Delete(ctx, id, ownerID); err != nil {
		metrics.ContactMutations.WithLabelValues("delete", failureStatus(err)).Inc()
		logger.Error("Failed to delete contact", zap.Error(err), zap.Int64("contact_id", id))
		return nil, false, err
	}

	s.removePicture(contact.PictureKey)

	metrics.ContactMutations.WithLabelValues("delete", "success").Inc()
	logger.Info("Contact deleted", zap.Int64("contact_id", id), zap.Int64("owner_id", ownerID))

	return contact, true, nil
}

func (s *ContactService) uploadPicture(ctx context.Context, contact *models.Contact, picture *validation.Picture) error {
	if s.storage == nil {
		metrics.PictureUploads.WithLabelValues("not_configured").Inc()
		return fmt.Errorf("picture storage not configured: %w", apperrors.ErrUnavailable)
	}

	key := slug.PictureKey(contact.FullName(), picture.FileName, picture.ContentType, s.now())
	url, err := s.storage.UploadImage(ctx, picture.Data(), key, picture.ContentType)
	if err != nil {
		status := "error"
		if storage.IsUnavailable(err) {
			status = "rejected"
		}
		metrics.PictureUploads.WithLabelValues(status).Inc()
		logger.Error("Failed to upload contact picture", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}

	metrics.PictureUploads.WithLabelValues("success").Inc()
	contact.PictureKey = key
	contact.PictureURL = url
	return nil
}

// removePicture deletes a stored object without holding up the request
func (s *ContactService) removePicture(key string) {
	if key == "" || s.storage == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pictureCleanupTimeout)
		defer cancel()

		if err := s.storage.DeleteObject(ctx, key); err != nil {
			logger.Warn("Failed to remove contact picture", zap.Error(err), zap.String("key", key))
		}
	}()
}

func applySubmission(contact *models.Contact, sub validation.ContactSubmission) {
	contact.FirstName = sub.FirstName
	contact.LastName = sub.LastName
	contact.Phone = sub.Phone
	contact.Email = sub.Email
	contact.Description = sub.Description
	contact.CategoryID = sub.Category
}

// IsUnavailable reports whether err means a backing service could not serve the request
func IsUnavailable(err error) bool {
	return errors.Is(err, apperrors.ErrUnavailable)
}
