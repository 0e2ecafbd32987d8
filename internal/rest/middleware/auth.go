package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/types"
)

// APIKeyAuthMiddleware authenticates requests by the x-api-key header.
// An empty configured key disables auth, which is the local-development
// default. The key identity becomes the acting user recorded on writes.
func APIKeyAuthMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Server.APIKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(types.HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Server.APIKey)) != 1 {
			logger.Debugw("invalid api key", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		ctx := types.SetActorID(c.Request.Context(), "staff")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
