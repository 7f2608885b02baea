package middleware

import (
	"net/http"
	"time"

	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const visitorIdleTTL = 3 * time.Minute

// RateLimiter throttles requests per client IP with a token bucket each.
// Buckets of clients that stay quiet for visitorIdleTTL are forgotten.
type RateLimiter struct {
	name     string
	limit    rate.Limit
	burst    int
	visitors *gocache.Cache
}

// NewRateLimiter allows limit requests per second per IP with bursts up to burst
func NewRateLimiter(name string, limit rate.Limit, burst int) *RateLimiter {
	return newRateLimiter(name, limit, burst, visitorIdleTTL)
}

func newRateLimiter(name string, limit rate.Limit, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		name:     name,
		limit:    limit,
		burst:    burst,
		visitors: gocache.New(idle, idle/3),
	}
}

func (rl *RateLimiter) bucket(ip string) *rate.Limiter {
	if v, ok := rl.visitors.Get(ip); ok {
		l := v.(*rate.Limiter)
		rl.visitors.SetDefault(ip, l)
		return l
	}

	l := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.visitors.Add(ip, l, gocache.DefaultExpiration); err != nil {
		// lost the race to another request from the same client
		if v, ok := rl.visitors.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// Middleware answers 429 once the caller's bucket is empty
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.bucket(c.ClientIP()).Allow() {
			c.Next()
			return
		}

		metrics.RateLimitRejections.WithLabelValues(rl.name).Inc()
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded. Please try again later.",
		})
	}
}
