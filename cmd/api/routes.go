package main

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contactbook/contactbook-api/config"
	"github.com/contactbook/contactbook-api/internal/handlers"
	"github.com/contactbook/contactbook-api/internal/middleware"
	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/contactbook/contactbook-api/pkg/jwt"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
)

const formBodyLimit = 100 * 1024

// contactBodyLimit fits the largest accepted picture base64 encoded in JSON plus
// the text fields, so oversized pictures get a field error from the validator.
var contactBodyLimit = int64(base64.StdEncoding.EncodedLen(validation.MaxPictureSize) + formBodyLimit)

// rateLimiters holds one limiter per class of endpoint
type rateLimiters struct {
	general *middleware.RateLimiter
	auth    *middleware.RateLimiter
	signup  *middleware.RateLimiter
	write   *middleware.RateLimiter
}

func newRateLimiters() *rateLimiters {
	return &rateLimiters{
		general: middleware.NewRateLimiter("general", 100, 200),
		auth:    middleware.NewRateLimiter("auth", 0.1, 5),       // one login per 10s after a burst of 5
		signup:  middleware.NewRateLimiter("signup", 0.00667, 3), // two sign-ups per 5 min
		write:   middleware.NewRateLimiter("write", 5, 10),
	}
}

type routeHandlers struct {
	health   *handlers.HealthHandler
	auth     *handlers.AuthHandler
	profile  *handlers.ProfileHandler
	contacts *handlers.ContactHandler
	category *handlers.CategoryHandler
}

// registerRoutes mounts every API route on router
func registerRoutes(router *gin.Engine, cfg *config.Config, limiters *rateLimiters, h routeHandlers, tokenManager *jwt.TokenManager) {
	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", limiters.general.Middleware(), h.health.Healthcheck)
	api.GET("/metrics",
		limiters.general.Middleware(),
		middleware.BearerTokenMiddleware(cfg.Observability.MetricsAuthToken),
		gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.GET("/categories", limiters.general.Middleware(), h.category.List)

	loginRequired := middleware.LoginRequiredMiddleware(tokenManager, cfg.Session.CookieDomain, cfg.Session.CookieSecure)
	if tokenManager == nil {
		logger.Warn("Session routes will answer 503: JWT_SECRET not configured")
	}

	auth := v1.Group("/auth")
	auth.POST("/register", limiters.signup.Middleware(), middleware.BodySizeLimitMiddleware(formBodyLimit), h.auth.Register)
	auth.POST("/login", limiters.auth.Middleware(), middleware.BodySizeLimitMiddleware(formBodyLimit), h.auth.Login)
	auth.POST("/logout", middleware.OptionalSessionMiddleware(tokenManager), h.auth.Logout)
	auth.GET("/session", loginRequired, h.auth.Session)

	profile := v1.Group("/profile")
	profile.Use(loginRequired)
	profile.GET("", h.profile.GetProfile)
	profile.POST("", limiters.write.Middleware(), middleware.BodySizeLimitMiddleware(formBodyLimit), h.profile.UpdateProfile)

	contacts := v1.Group("/contacts")
	contacts.Use(loginRequired)
	contacts.GET("", limiters.general.Middleware(), h.contacts.List)
	contacts.GET("/:id", limiters.general.Middleware(), h.contacts.Get)
	contacts.POST("", limiters.write.Middleware(), middleware.BodySizeLimitMiddleware(contactBodyLimit), h.contacts.Create)
	contacts.POST("/:id", limiters.write.Middleware(), middleware.BodySizeLimitMiddleware(contactBodyLimit), h.contacts.Update)
	contacts.POST("/:id/delete", limiters.write.Middleware(), middleware.BodySizeLimitMiddleware(formBodyLimit), h.contacts.Delete)
}
