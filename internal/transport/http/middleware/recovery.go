package middleware

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-api/internal/transport/http/response"
)

// Recovery logs panics with stack traces and answers with the generic 500
// envelope; nothing leaks to the caller and the process keeps serving.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error("Internal server error"))
	})
}
