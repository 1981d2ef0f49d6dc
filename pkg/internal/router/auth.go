package router

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/internal/handle"
)

// RegisterAuthRoutes 注册认证相关路由.
func RegisterAuthRoutes(g *gin.RouterGroup) {
	g.GET("/auth/me", handle.Me)
}
