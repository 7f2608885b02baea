package handlers

import (
	"errors"
	"net/http"

	"github.com/contactbook/contactbook-api/internal/middleware"
	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/services"
	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration and session endpoints
type AuthHandler struct {
	service services.UserServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service services.UserServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var sub validation.RegistrationSubmission
	if err := c.ShouldBind(&sub); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), sub)
	if err != nil {
		respondServiceError(c, "registration", "User not found", err)
		return
	}

	profile := user.ToProfile()
	c.JSON(http.StatusCreated, models.RegisterResponse{
		Success: true,
		Message: "User registered successfully",
		User:    &profile,
	})
}

// Login handles POST /api/v1/auth/login
// Checks the credentials and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	session, token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		attachError(c, err)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, models.LoginResponse{
				Success: false,
				Error:   services.InvalidCredentialsMessage,
			})
		case errors.Is(err, services.ErrJWTSecretNotSet):
			c.JSON(http.StatusServiceUnavailable, models.LoginResponse{
				Success: false,
				Error:   "Service temporarily unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.LoginResponse{
				Success: false,
				Error:   "Internal server error",
			})
		}
		return
	}

	middleware.SetSessionCookie(
		c,
		token,
		h.service.GetSessionTTL(),
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		Session: session,
	})
}

// Logout handles POST /api/v1/auth/logout
// Clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.LogoutResponse{
		Success: true,
		Message: "You have been logged out",
	})
}

// Session handles GET /api/v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Authentication required", err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		Session: session,
	})
}
