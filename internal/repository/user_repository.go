package repository

import (
	"context"
	"strings"
	"time"

	"github.com/contactbook/contactbook-api/internal/models"
)

// UserRepository handles user data access
type UserRepository struct {
	source UserDataSource
	now    func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(source UserDataSource) *UserRepository {
	return &UserRepository{source: source, now: time.Now}
}

// Create stores a new user. Emails are kept as typed; lookups ignore case.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return r.source.CreateUser(ctx, u)
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.source.GetUserByID(ctx, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.source.GetUserByUsername(ctx, strings.TrimSpace(username))
}

// Update saves profile fields and, when PasswordHash is set, the new password
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	return r.source.UpdateUser(ctx, u)
}

// TouchLastLogin records a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	return r.source.UpdateLastLogin(ctx, id, r.now().UTC())
}

// EmailExists implements validation.UserLookup
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	return r.source.EmailExists(ctx, email, excludeUserID)
}

// UsernameExists implements validation.UserLookup
func (r *UserRepository) UsernameExists(ctx context.Context, username string, excludeUserID int64) (bool, error) {
	return r.source.UsernameExists(ctx, username, excludeUserID)
}
