package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"

	"alessacloud/internal/config"
)

// RateLimiterMiddleware limits request rates per client IP. When redis is
// available the counter is shared across instances; otherwise a local
// token bucket is used.
type RateLimiterMiddleware struct {
	cfg     config.RateLimitConfig
	client  *redis.Client
	limiter *rate.Limiter
}

// NewRateLimiterMiddleware creates a new rate limiter middleware. The
// redis client may be nil.
func NewRateLimiterMiddleware(cfg config.RateLimitConfig, client *redis.Client) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Limit returns the gin middleware handler
func (m *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.cfg.Enabled {
			c.Next()
			return
		}

		if m.client == nil {
			if !m.limiter.Allow() {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())
		ctx := c.Request.Context()

		count, err := m.client.Incr(ctx, key).Result()
		if err != nil {
			// Redis trouble should not take the API down with it.
			c.Next()
			return
		}

		if count == 1 {
			m.client.Expire(ctx, key, time.Duration(m.cfg.ExpireMinutes)*time.Minute)
		}

		window := float64(m.cfg.ExpireMinutes) * 60 * m.cfg.RequestsPerSecond
		if float64(count) > window+float64(m.cfg.Burst) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
