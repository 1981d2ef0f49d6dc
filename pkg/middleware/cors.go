package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/configs"
)

// CORSMiddleware 全局 CORS：管理端需要携带 Authorization 与 If-Match，并读取 ETag 与缓存头.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept",
			"Authorization", "If-Match", "X-Client-Info", "Apikey", "X-Cache-Bypass",
		},
		ExposeHeaders: []string{"ETag", "X-Cache", "Age", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	if cfg.Debug || len(cfg.CORSOrigins) == 0 || slices.Contains(cfg.CORSOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
		c.AllowCredentials = true
	}

	return cors.New(c)
}
