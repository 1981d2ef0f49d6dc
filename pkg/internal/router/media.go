package router

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/handle"
	"github.com/feyabloom/studio/pkg/middleware"
)

// RegisterMediaRoutes 注册媒体库路由，上传接口单独限流.
func RegisterMediaRoutes(g *gin.RouterGroup, rl configs.RateLimitConfig) {
	mediaRoutes := g.Group("/media")
	{
		mediaRoutes.GET("/buckets", handle.MediaBuckets)
		mediaRoutes.GET("", handle.MediaList)
		mediaRoutes.DELETE("", handle.MediaDelete)
		mediaRoutes.POST("/rename", handle.MediaRename)
		mediaRoutes.POST("/move", handle.MediaMove)

		folderRoutes := mediaRoutes.Group("/folders")
		{
			folderRoutes.POST("", handle.MediaCreateFolder)
			folderRoutes.DELETE("", handle.MediaDeleteFolder)
			folderRoutes.POST("/rename", handle.MediaRenameFolder)
		}

		intentRoutes := mediaRoutes.Group("/intents")
		{
			intentRoutes.GET("", handle.MediaIntents)
			intentRoutes.POST("/reconcile", handle.MediaReconcile)
		}

		if rl.Enabled {
			mediaRoutes.POST("/upload", middleware.RateLimitMiddleware(rl), handle.MediaUpload)
		} else {
			mediaRoutes.POST("/upload", handle.MediaUpload)
		}
	}
}
