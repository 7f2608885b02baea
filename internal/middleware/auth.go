package middleware

import (
	"net/http"
	"strings"

	"github.com/contactbook/contactbook-api/pkg/jwt"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BearerTokenMiddleware guards internal endpoints such as /metrics with a static
// bearer token. An empty validToken leaves the endpoint open.
func BearerTokenMiddleware(validToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validToken == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")

		if !found || token == "" {
			logger.Warn("Missing bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token"})
			c.Abort()
			return
		}

		if !jwt.TimingSafeCompare(token, validToken) {
			logger.Warn("Invalid bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid authentication token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
