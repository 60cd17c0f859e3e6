package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"agentcrew/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/pretty"
)

const maxLoggedBody = 1000

// RequestLogger logs one line per request with latency, status and a
// compacted copy of the request body for mutating methods.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var body string
		if c.Request.Method == http.MethodPost {
			body = readRequestBody(c)
		}

		c.Next()

		if c.Writer.Status() == http.StatusNotFound {
			return
		}

		msg := ""
		if body != "" {
			msg = ", body: " + body
		}
		logger.InfoCtx(c.Request.Context(), "%3d | %13v | %15s | %s %s%s",
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.Method,
			c.Request.RequestURI,
			msg,
		)
	}
}

// readRequestBody drains and restores the body so handlers can still
// bind it.
func readRequestBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	bodyBytes, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	return CompressBody(string(bodyBytes))
}

// CompressBody strips whitespace from a JSON body and truncates it to
// a loggable size.
func CompressBody(body string) string {
	if len(body) == 0 {
		return ""
	}
	compressed := pretty.Ugly([]byte(body))
	if len(compressed) > maxLoggedBody {
		return string(compressed[:maxLoggedBody]) + "..."
	}
	return string(compressed)
}
