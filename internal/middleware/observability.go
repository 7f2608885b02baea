package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// redactedParams never reach the request log
var redactedParams = map[string]struct{}{
	"token": {}, "secret": {}, "key": {}, "auth": {},
	"password": {}, "password1": {}, "password2": {},
}

// ObservabilityMiddleware records request metrics and writes one log line per request
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		// Label by route template so ids do not blow up cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()
		code := strconv.Itoa(status)
		duration := metrics.MeasureDuration(start)
		metrics.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, code).Inc()

		fields := []zap.Field{
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if session, err := GetUserSession(c); err == nil {
			fields = append(fields, zap.Int64("user_id", session.UserID))
		}
		if status >= 400 {
			fields = append(fields, failureFields(c)...)
		}

		logger.LogHTTPRequest(method, c.Request.URL.Path, status, duration, fields...)
	}
}

// failureFields adds route params, safe query params and gin errors to a failed request's log line
func failureFields(c *gin.Context) []zap.Field {
	var fields []zap.Field

	if len(c.Params) > 0 {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		fields = append(fields, zap.Any("route_params", params))
	}

	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if _, hidden := redactedParams[strings.ToLower(k)]; hidden || len(v) == 0 {
			continue
		}
		query[k] = v[0]
	}
	if len(query) > 0 {
		fields = append(fields, zap.Any("query_params", query))
	}

	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}
	return fields
}
