package services

import (
	"context"

	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/contactbook/contactbook-api/pkg/jwt"
)

// SubmissionValidator cleans form submissions before they reach storage
type SubmissionValidator interface {
	ValidateContact(ctx context.Context, sub validation.ContactSubmission) (validation.ContactSubmission, error)
	ValidateRegistration(ctx context.Context, sub validation.RegistrationSubmission) (validation.RegistrationSubmission, error)
	ValidateRegistrationUpdate(ctx context.Context, sub validation.RegistrationUpdateSubmission) (validation.RegistrationUpdateSubmission, error)
}

// PictureStorage keeps contact pictures
type PictureStorage interface {
	UploadImage(ctx context.Context, data []byte, key, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// UserServiceInterface defines account and session operations
type UserServiceInterface interface {
	Register(ctx context.Context, sub validation.RegistrationSubmission) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.UserSession, string, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, sub validation.RegistrationUpdateSubmission) (*models.User, error)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

// ContactServiceInterface defines address book operations, always scoped to an owner
type ContactServiceInterface interface {
	List(ctx context.Context, params models.ContactListParams) (*models.ContactPage, error)
	Get(ctx context.Context, id, ownerID int64) (*models.Contact, error)
	Create(ctx context.Context, ownerID int64, sub validation.ContactSubmission) (*models.Contact, error)
	Update(ctx context.Context, id, ownerID int64, sub validation.ContactSubmission) (*models.Contact, error)
	Delete(ctx context.Context, id, ownerID int64, confirmation string) (*models.Contact, bool, error)
}

// CategoryServiceInterface defines category read operations
type CategoryServiceInterface interface {
	List(ctx context.Context) ([]*models.Category, error)
}

// Ensure services implement their interfaces
var _ SubmissionValidator = (*validation.Validator)(nil)
var _ UserServiceInterface = (*UserService)(nil)
var _ ContactServiceInterface = (*ContactService)(nil)
var _ CategoryServiceInterface = (*CategoryService)(nil)
