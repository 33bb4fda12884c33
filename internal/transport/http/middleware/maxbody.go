package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-directory-api/internal/transport/http/response"
)

// MaxBodyBytes rejects request bodies over n bytes. The image store has its
// own tighter cap for uploads; this bounds the whole multipart form.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, response.Error("Request body too large"))
		}
	}
}
