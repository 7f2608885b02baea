package handlers

import (
	"net/http"
	"time"

	"github.com/contactbook/contactbook-api/internal/middleware"
	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/services"
	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler serves the signed-in user's own account
type ProfileHandler struct {
	service services.UserServiceInterface
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service services.UserServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Authentication required", err)
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), session.UserID)
	if err != nil {
		respondServiceError(c, "profile", "User not found", err)
		return
	}

	c.JSON(http.StatusOK, user.ToProfile())
}

// UpdateProfile handles POST /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Authentication required", err)
		return
	}

	var sub validation.RegistrationUpdateSubmission
	if err := c.ShouldBind(&sub); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), session.UserID, sub)
	if err != nil {
		respondServiceError(c, "profile", "User not found", err)
		return
	}

	// The session carries username and email, so a changed profile gets a fresh cookie
	if user.Username != session.Username || user.Email != session.Email {
		h.refreshSession(c, user)
	}

	profile := user.ToProfile()
	c.JSON(http.StatusOK, models.UpdateProfileResponse{
		Success: true,
		Message: "Profile updated successfully",
		User:    &profile,
	})
}

func (h *ProfileHandler) refreshSession(c *gin.Context, user *models.User) {
	tm := h.service.GetTokenManager()
	if tm == nil {
		return
	}

	token, err := tm.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		logger.Warn("Failed to refresh session after profile update",
			zap.Error(err),
			zap.Int64("user_id", user.ID))
		return
	}

	middleware.SetSessionCookie(c, token, h.service.GetSessionTTL(), h.service.GetCookieDomain(), h.service.GetCookieSecure())
	c.Set(middleware.UserSessionContextKey, user.ToSession(time.Now().Add(tm.TTL()).Unix(), time.Now().Unix()))
}
