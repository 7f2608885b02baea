package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/contactbook/contactbook-api/config"
	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/repository"
	"github.com/contactbook/contactbook-api/internal/validation"
	apperrors "github.com/contactbook/contactbook-api/pkg/errors"
	"github.com/contactbook/contactbook-api/pkg/jwt"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/contactbook/contactbook-api/pkg/tracing"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrJWTSecretNotSet     = errors.New("JWT secret not configured")
	ErrTokenGenerationFail = errors.New("failed to generate session token")
)

const (
	// InvalidCredentialsMessage is shown for every failed login, whatever the cause
	InvalidCredentialsMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes       = 72
	msgPasswordTooLong     = "Ensure this value has at most 72 bytes."
	timingEqualizerPayload = "contactbook-login-timing"
)

// UserService handles registration, login and the signed-in user's profile
type UserService struct {
	users        repository.UserRepositoryInterface
	validator    SubmissionValidator
	config       *config.Config
	tokenManager *jwt.TokenManager
	bcryptCost   int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepositoryInterface, validator SubmissionValidator, cfg *config.Config) *UserService {
	var tokenManager *jwt.TokenManager
	if cfg.Session.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(
			cfg.Session.JWTSecret,
			cfg.Session.JWTIssuer,
			cfg.Session.TTLHours,
		)
	}

	cost := cfg.Password.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &UserService{
		users:        users,
		validator:    validator,
		config:       cfg,
		tokenManager: tokenManager,
		bcryptCost:   cost,
	}
}

// Register validates a sign-up form and creates an active user
func (s *UserService) Register(ctx context.Context, sub validation.RegistrationSubmission) (_ *models.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "UserService.Register")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	clean, err := s.validator.ValidateRegistration(ctx, sub)
	if err != nil {
		metrics.UserRegistrations.WithLabelValues(failureStatus(err)).Inc()
		return nil, err
	}

	hash, err := s.hashPassword(clean.Password2, "password2")
	if err != nil {
		metrics.UserRegistrations.WithLabelValues(failureStatus(err)).Inc()
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     clean.Username,
		Email:        clean.Email,
		FirstName:    clean.FirstName,
		LastName:     clean.LastName,
		PasswordHash: hash,
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	})
	if err != nil {
		metrics.UserRegistrations.WithLabelValues(failureStatus(err)).Inc()
		logger.Error("Failed to create user", zap.Error(err), zap.String("username", clean.Username))
		return nil, err
	}

	metrics.UserRegistrations.WithLabelValues("success").Inc()
	logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	return user, nil
}

// Login checks credentials and issues a session token
func (s *UserService) Login(ctx context.Context, username, password string) (_ *models.UserSession, _ string, err error) {
	ctx, span := tracing.StartSpan(ctx, "UserService.Login")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	if s.tokenManager == nil {
		logger.Error("JWT secret not configured")
		metrics.UserLogins.WithLabelValues("not_configured").Inc()
		return nil, "", ErrJWTSecretNotSet
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			metrics.UserLogins.WithLabelValues("error").Inc()
			return nil, "", fmt.Errorf("failed to load user: %w", err)
		}
		// Spend the same time as a real comparison so unknown usernames are not observable
		_ = bcrypt.CompareHashAndPassword(s.timingHash(), []byte(password))
		metrics.UserLogins.WithLabelValues("invalid_credentials").Inc()
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil || !user.IsActive {
		logger.Warn("Failed login attempt",
			zap.String("username", user.Username),
			zap.Bool("active", user.IsActive))
		metrics.UserLogins.WithLabelValues("invalid_credentials").Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		logger.Error("Failed to generate session token", zap.Error(err), zap.Int64("user_id", user.ID))
		metrics.UserLogins.WithLabelValues("token_generation_failed").Inc()
		return nil, "", ErrTokenGenerationFail
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Warn("Failed to update last login", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	now := time.Now()
	session := user.ToSession(now.Add(s.tokenManager.TTL()).Unix(), now.Unix())

	metrics.UserLogins.WithLabelValues("success").Inc()
	logger.Info("User logged in", zap.Int64("user_id", user.ID))

	return session, token, nil
}

// GetProfile returns the user behind a session
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile validates the profile form and saves it. The password is only
// replaced when a new one was entered.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, sub validation.RegistrationUpdateSubmission) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		metrics.ProfileUpdates.WithLabelValues(failureStatus(err)).Inc()
		return nil, err
	}

	sub.UserID = user.ID
	clean, err := s.validator.ValidateRegistrationUpdate(ctx, sub)
	if err != nil {
		metrics.ProfileUpdates.WithLabelValues(failureStatus(err)).Inc()
		return nil, err
	}

	user.FirstName = clean.FirstName
	user.LastName = clean.LastName
	user.Email = clean.Email
	user.Username = clean.Username

	// An empty hash keeps the stored one
	user.PasswordHash = ""
	if clean.PasswordChanged() {
		hash, err := s.hashPassword(clean.Password1, "password1")
		if err != nil {
			metrics.ProfileUpdates.WithLabelValues(failureStatus(err)).Inc()
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		metrics.ProfileUpdates.WithLabelValues(failureStatus(err)).Inc()
		logger.Error("Failed to update profile", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, err
	}
	user.PasswordHash = ""

	metrics.ProfileUpdates.WithLabelValues("success").Inc()
	logger.Info("Profile updated",
		zap.Int64("user_id", user.ID),
		zap.Bool("password_changed", clean.PasswordChanged()))

	return user, nil
}

func (s *UserService) hashPassword(password, field string) (string, error) {
	if len(password) > maxPasswordBytes {
		errs := validation.FieldErrors{}
		errs.Add(field, validation.KindLength, msgPasswordTooLong)
		return "", errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *UserService) timingHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(timingEqualizerPayload), s.bcryptCost)
		if err != nil {
			logger.Error("Failed to prepare timing hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// GetSessionTTL returns the session TTL in seconds
func (s *UserService) GetSessionTTL() int {
	return s.config.Session.TTLHours * 3600
}

// GetCookieDomain returns the cookie domain
func (s *UserService) GetCookieDomain() string {
	return s.config.Session.CookieDomain
}

// GetCookieSecure returns whether cookies should be secure
func (s *UserService) GetCookieSecure() bool {
	return s.config.Session.CookieSecure
}

// GetTokenManager returns the token manager for middleware use
func (s *UserService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}

// failureStatus turns an error into a metrics label
func failureStatus(err error) string {
	if _, ok := validation.AsFieldErrors(err); ok {
		return "validation_failed"
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrUnavailable):
		return "unavailable"
	}
	return "error"
}
