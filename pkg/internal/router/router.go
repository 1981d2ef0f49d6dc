// Package router 把处理器绑定到路由组，并挂载各组专用的中间件.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/handle"
	"github.com/feyabloom/studio/pkg/middleware"
)

// APIPrefix 业务路由前缀.
const APIPrefix = "/api/v1"

// RegisterAPI 在 /api/v1 下注册全部业务路由.
// responseCache 为 nil 时公开图库不做响应缓存.
//
//	/health/*            公开
//	/gallery, /contact   公开
//	/auth/me             登录用户
//	/media, /projects    管理员
//	/scheduler           管理员
func RegisterAPI(e *gin.Engine, cfg *configs.AppConfig, responseCache *cache.Cache) *gin.RouterGroup {
	api := e.Group(APIPrefix)

	RegisterHealthCheckRoute(api)
	RegisterGalleryRoutes(api, cfg.Server, responseCache)
	RegisterContactRoutes(api, cfg)
	RegisterAuthRoutes(api)

	admin := api.Group("", middleware.RequireAdmin(cfg.Auth))
	RegisterMediaRoutes(admin, cfg.RateLimit)
	RegisterProjectRoutes(admin)
	RegisterSchedulerRoutes(admin)

	e.NoRoute(handle.DefaultHandler)

	return api
}
