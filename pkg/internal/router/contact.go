package router

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/handle"
	"github.com/feyabloom/studio/pkg/middleware"
)

// RegisterContactRoutes 注册联系表单路由：宽松 CORS、按 IP 限流、熔断.
func RegisterContactRoutes(g *gin.RouterGroup, cfg *configs.AppConfig) {
	contactRoutes := g.Group("/contact", middleware.ContactCORS())
	contactRoutes.OPTIONS("", handle.ContactPreflight)

	chain := []gin.HandlerFunc{middleware.ContactRateLimit(cfg.RateLimit)}

	if cfg.CircuitBreaker.Enabled {
		chain = append(chain, middleware.CircuitBreakerMiddleware("contact", cfg.CircuitBreaker))
	}

	chain = append(chain, handle.SendContact)
	contactRoutes.POST("", chain...)
}
