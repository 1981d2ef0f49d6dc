package router

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由：/health 汇总全部组件，子路径检查单个组件.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	h := g.Group("/health")

	h.GET("", handle.HealthAll)

	for path, fn := range map[string]gin.HandlerFunc{
		"/db":      handle.HealthDB,
		"/storage": handle.HealthStorage,
		"/mq":      handle.HealthMQ,
		"/kv":      handle.HealthKV,
	} {
		h.GET(path, fn)
	}
}
