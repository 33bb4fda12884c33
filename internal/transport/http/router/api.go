package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-api/internal/core/config"
	"user-directory-api/internal/transport/http/handler"
	mdw "user-directory-api/internal/transport/http/middleware"
	"user-directory-api/internal/transport/http/response"
)

// NewAPIEngine wires the middleware chain, the /api/users routes, static
// serving for uploaded images and, in production, the built client.
func NewAPIEngine(l *zap.Logger, cfg *config.Config, h *handler.UserHandler, uploadsDir string) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	r.Use(cors.New(corsConfig(cfg.App.ClientOrigin)))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Msg("API is running"))
	})

	r.Static("/uploads", uploadsDir)

	h.Register(r.Group("/api/users"))

	r.NoRoute(noRoute(cfg))

	return r
}

func corsConfig(origin string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	if origin == "" || origin == "*" {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = []string{origin}
	return cc
}

// noRoute serves the built SPA in production: known files directly, every
// other non-API GET falls back to index.html for client-side routing.
func noRoute(cfg *config.Config) gin.HandlerFunc {
	serveSPA := cfg.App.Env == "production" && cfg.App.StaticDir != ""
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if !serveSPA || c.Request.Method != http.MethodGet ||
			strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/uploads/") {
			c.JSON(http.StatusNotFound, response.Error("Not Found"))
			return
		}
		full := filepath.Join(cfg.App.StaticDir, filepath.Clean("/"+p))
		if st, err := os.Stat(full); err == nil && !st.IsDir() {
			c.File(full)
			return
		}
		c.File(filepath.Join(cfg.App.StaticDir, "index.html"))
	}
}
