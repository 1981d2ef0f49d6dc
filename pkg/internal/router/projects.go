package router

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/internal/handle"
)

// RegisterProjectRoutes 注册项目管理路由.
func RegisterProjectRoutes(g *gin.RouterGroup) {
	projectRoutes := g.Group("/projects")
	{
		projectRoutes.GET("", handle.ListProjects)
		projectRoutes.POST("", handle.CreateProject)

		singleGroup := projectRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetProject)
			singleGroup.PUT("", handle.UpdateProject)
			singleGroup.DELETE("", handle.DeleteProject)
			singleGroup.POST("/blocks", handle.EditProjectBlocks)
		}
	}
}
