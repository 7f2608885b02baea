package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactbook/contactbook-api/internal/models"
	apperrors "github.com/contactbook/contactbook-api/pkg/errors"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, first_name, last_name, password_hash, is_active, date_joined, last_login`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.IsActive, &u.DateJoined, &u.LastLogin)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateUser inserts a new user and fills its generated fields
func (c *Client) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	start := time.Now()
	operation := "createUser"

	row := c.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash)

	created, err := scanUser(row)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		observe(operation, duration, err, zap.String("username", u.Username))
		if isUniqueViolation(err) {
			return nil, apperrors.ConflictError("user")
		}
		return nil, apperrors.InternalError("failed to create user", err)
	}

	observe(operation, duration, nil, zap.Int64("user_id", created.ID))
	return created, nil
}

func (c *Client) getUserBy(ctx context.Context, operation, column string, arg any) (*models.User, error) {
	start := time.Now()

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s = $1", userColumns, column)
	u, err := scanUser(c.pool.QueryRow(ctx, query, arg))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("user")
	}
	if err != nil {
		observe(operation, duration, err)
		return nil, apperrors.InternalError("failed to query user", err)
	}

	recordMetrics(operation, "success", duration)
	return u, nil
}

// GetUserByID fetches a user by primary key
func (c *Client) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return c.getUserBy(ctx, "getUserByID", "id", id)
}

// GetUserByUsername fetches a user by exact username
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.getUserBy(ctx, "getUserByUsername", "username", username)
}

// UpdateUser saves profile fields. The password hash is only replaced when non-empty.
func (c *Client) UpdateUser(ctx context.Context, u *models.User) error {
	start := time.Now()
	operation := "updateUser"

	tag, err := c.pool.Exec(ctx, `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5,
			password_hash = COALESCE(NULLIF($6, ''), password_hash)
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		observe(operation, duration, err, zap.Int64("user_id", u.ID))
		if isUniqueViolation(err) {
			return apperrors.ConflictError("user")
		}
		return apperrors.InternalError("failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("user")
	}

	observe(operation, duration, nil, zap.Int64("user_id", u.ID))
	return nil
}

// UpdateLastLogin stamps the user's last successful login
func (c *Client) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	start := time.Now()
	operation := "updateLastLogin"

	_, err := c.pool.Exec(ctx, "UPDATE users SET last_login = $2 WHERE id = $1", id, at)
	observe(operation, metrics.MeasureDuration(start), err, zap.Int64("user_id", id))
	if err != nil {
		return apperrors.InternalError("failed to update last login", err)
	}
	return nil
}

// EmailExists reports whether another user already has email, ignoring case
func (c *Client) EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	return c.exists(ctx, "emailExists",
		"SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)",
		email, excludeUserID)
}

// UsernameExists reports whether another user already has username
func (c *Client) UsernameExists(ctx context.Context, username string, excludeUserID int64) (bool, error) {
	return c.exists(ctx, "usernameExists",
		"SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)",
		username, excludeUserID)
}

func (c *Client) exists(ctx context.Context, operation, query string, args ...any) (bool, error) {
	start := time.Now()

	var found bool
	err := c.pool.QueryRow(ctx, query, args...).Scan(&found)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		observe(operation, duration, err)
		return false, apperrors.InternalError("failed to run "+operation, err)
	}

	recordMetrics(operation, "success", duration)
	return found, nil
}
