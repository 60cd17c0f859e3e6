package middleware

import (
	"net/http"
	"runtime/debug"

	"agentcrew/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery catches handler panics and converts them to a standard
// error response instead of killing the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()
				logger.ErrorCtx(c.Request.Context(),
					"panic recovered: %v\nstack:\n%s", err, string(stack))

				resp := gin.H{"error": "internal server error"}
				if gin.Mode() == gin.DebugMode {
					resp["detail"] = err
					resp["stack"] = string(stack)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()
	}
}
