package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/logger"
)

// RateLimiterMiddleware applies a token-bucket limit per client IP. A
// zero configured rate disables limiting.
func RateLimiterMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	if cfg.Server.RateLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := cfg.Server.RateBurst
	if burst <= 0 {
		burst = int(cfg.Server.RateLimit) + 1
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), burst)
			limiters[key] = limiter
		}
		return limiter
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			logger.Debugw("rate limit exceeded", "client", c.ClientIP())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
