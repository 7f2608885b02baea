package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	UserSessionCookieName = "user_session"
	UserSessionContextKey = "user_session"
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// LoginRequiredMiddleware puts the session from a valid cookie into the context
// and answers 401 for everything else. A bad cookie is cleared.
func LoginRequiredMiddleware(tokenManager *jwt.TokenManager, cookieDomain string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenManager == nil {
			abortWith(c, http.StatusServiceUnavailable, "Sessions are not configured",
				errors.New("session token manager not configured"))
			return
		}

		session, present, err := sessionFromCookie(c, tokenManager)
		switch {
		case !present:
			abortWith(c, http.StatusUnauthorized, "Authentication required", errors.New("missing session cookie"))
			return
		case err != nil:
			writeSessionCookie(c, "", -1, cookieDomain, cookieSecure)
			msg := "Authentication required"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "Session expired"
			}
			abortWith(c, http.StatusUnauthorized, msg, fmt.Errorf("invalid session token: %w", err))
			return
		}

		c.Set(UserSessionContextKey, session)
		c.Next()
	}
}

// OptionalSessionMiddleware attaches the session when the cookie is valid and
// never blocks the request.
func OptionalSessionMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenManager != nil {
			if session, _, err := sessionFromCookie(c, tokenManager); err == nil && session != nil {
				c.Set(UserSessionContextKey, session)
			}
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, status int, msg string, cause error) {
	_ = c.Error(cause) //nolint:errcheck
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// sessionFromCookie reports whether a cookie was sent and, if so, the session it carries
func sessionFromCookie(c *gin.Context, tokenManager *jwt.TokenManager) (*models.UserSession, bool, error) {
	raw, err := c.Cookie(UserSessionCookieName)
	if err != nil || raw == "" {
		return nil, false, nil
	}

	claims, err := tokenManager.ValidateToken(raw)
	if err != nil {
		return nil, true, err
	}

	return &models.UserSession{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Unix(),
		IssuedAt:  claims.IssuedAt.Unix(),
	}, true, nil
}

// GetUserSession returns the session a middleware stored on the context
func GetUserSession(c *gin.Context) (*models.UserSession, error) {
	val, ok := c.Get(UserSessionContextKey)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session, ok := val.(*models.UserSession); ok {
		return session, nil
	}
	return nil, ErrInvalidSession
}

// SetSessionCookie stores a session token in an HttpOnly, SameSite=Lax cookie
func SetSessionCookie(c *gin.Context, token string, ttlSeconds int, domain string, secure bool) {
	writeSessionCookie(c, token, ttlSeconds, domain, secure)
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c *gin.Context, domain string, secure bool) {
	writeSessionCookie(c, "", -1, domain, secure)
}

func writeSessionCookie(c *gin.Context, value string, maxAge int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(UserSessionCookieName, value, maxAge, "/", domain, secure, true)
}
