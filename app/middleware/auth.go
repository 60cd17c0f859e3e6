package middleware

import (
	"net/http"
	"strings"

	"agentcrew/pkg/config"
	"agentcrew/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Auth validates the bearer token against the configured API key.
// Authentication is skipped entirely when no key is configured.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.GlobalConfig.Server.APIKey
		if expected == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token != expected {
			logger.WarnCtx(c.Request.Context(), "unauthorized request, path: %s", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}
