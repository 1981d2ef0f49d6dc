// Package api 把业务路由组与文档路由挂载到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/router"
)

// RegisterGroup 注册 /api/v1 路由组与 swagger 文档.
func RegisterGroup(e *gin.Engine, cfg *configs.AppConfig, responseCache *cache.Cache) *gin.Engine {
	router.RegisterAPI(e, cfg, responseCache)
	router.RegisterSwaggerRoute(e)

	return e
}
