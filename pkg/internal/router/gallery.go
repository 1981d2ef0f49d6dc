package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/handle"
	"github.com/feyabloom/studio/pkg/middleware"
)

// RegisterGalleryRoutes 注册公开图库路由，响应经过压缩与缓存.
func RegisterGalleryRoutes(g *gin.RouterGroup, cfg configs.ServerConfig, responseCache *cache.Cache) {
	galleryRoutes := g.Group("/gallery")

	if cfg.Gzip {
		galleryRoutes.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	if responseCache != nil && cfg.CacheTTL > 0 {
		galleryRoutes.Use(middleware.CacheMiddleware(responseCache, middleware.WithCacheTTL(cfg.GetCacheTTL())))
	}

	{
		galleryRoutes.GET("", handle.ListGallery)
		galleryRoutes.GET("/categories", handle.GalleryCategories)
		galleryRoutes.GET("/:id", handle.GetGallery)
	}
}
