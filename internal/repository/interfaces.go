package repository

import (
	"context"
	"time"

	"github.com/contactbook/contactbook-api/internal/database/postgres"
	"github.com/contactbook/contactbook-api/internal/models"
)

// UserDataSource is the storage behind UserRepository
type UserDataSource interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error)
	UsernameExists(ctx context.Context, username string, excludeUserID int64) (bool, error)
}

// ContactDataSource is the storage behind ContactRepository
type ContactDataSource interface {
	ListContacts(ctx context.Context, params models.ContactListParams) ([]*models.Contact, int, error)
	GetContact(ctx context.Context, id, ownerID int64) (*models.Contact, error)
	CreateContact(ctx context.Context, ct *models.Contact) (*models.Contact, error)
	UpdateContact(ctx context.Context, ct *models.Contact) (*models.Contact, error)
	DeleteContact(ctx context.Context, id, ownerID int64) error
}

// CategoryDataSource is the storage behind the category cache
type CategoryDataSource interface {
	GetAllCategories(ctx context.Context) ([]*models.Category, error)
}

// UserRepositoryInterface defines user data access operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	TouchLastLogin(ctx context.Context, id int64) error
	EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error)
	UsernameExists(ctx context.Context, username string, excludeUserID int64) (bool, error)
}

// ContactRepositoryInterface defines contact data access operations
type ContactRepositoryInterface interface {
	List(ctx context.Context, params models.ContactListParams) (*models.ContactPage, error)
	GetByID(ctx context.Context, id, ownerID int64) (*models.Contact, error)
	Create(ctx context.Context, ct *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, ct *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// CategoryRepositoryInterface defines category data access operations
type CategoryRepositoryInterface interface {
	GetAll(ctx context.Context) ([]*models.Category, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// Ensure implementations satisfy their interfaces
var _ UserDataSource = (*postgres.Client)(nil)
var _ ContactDataSource = (*postgres.Client)(nil)
var _ CategoryDataSource = (*postgres.Client)(nil)
var _ UserRepositoryInterface = (*UserRepository)(nil)
var _ ContactRepositoryInterface = (*ContactRepository)(nil)
var _ CategoryRepositoryInterface = (*CategoryRepository)(nil)
