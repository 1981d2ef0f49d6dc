package handle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/content"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/types"
)

// ListProjects 返回全部项目（含未发布），按管理顺序排列.
//
//	@Summary	项目列表
//	@Tags		项目
//	@Produce	json
//	@Success	200	{object}	types.ProjectsResponse
//	@Router		/api/v1/projects [get]
func ListProjects(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := service.NewProjectService(ctx).List(ctx)
	if err != nil {
		respondError(c, "projects.list", err)
		return
	}

	c.JSON(http.StatusOK, types.ProjectsResponse{Projects: projects, Total: len(projects)})
}

// GetProject 获取单个项目.
//
//	@Summary	获取项目
//	@Tags		项目
//	@Produce	json
//	@Param		id	path		string	true	"项目 ID"
//	@Success	200	{object}	model.Project
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/projects/{id} [get]
func GetProject(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := service.NewProjectService(ctx).Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "projects.get", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// CreateProject 新建项目.
//
//	@Summary	新建项目
//	@Tags		项目
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.ProjectRequest	true	"项目"
//	@Success	201		{object}	model.Project
//	@Failure	400		{object}	map[string]string
//	@Router		/api/v1/projects [post]
func CreateProject(c *gin.Context) {
	var req types.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "projects.create", err)
		return
	}

	ctx := c.Request.Context()

	p, err := service.NewProjectService(ctx).Create(ctx, &req)
	if err != nil {
		respondError(c, "projects.create", err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// UpdateProject 整体更新项目.
//
//	@Summary	更新项目
//	@Tags		项目
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"项目 ID"
//	@Param		body	body		types.ProjectRequest	true	"项目"
//	@Success	200		{object}	model.Project
//	@Router		/api/v1/projects/{id} [put]
func UpdateProject(c *gin.Context) {
	var req types.ProjectRequest
	handleOperation(c, "projects.update", &req, func(ctx context.Context, r *types.ProjectRequest) (*model.Project, error) {
		return service.NewProjectService(ctx).Update(ctx, c.Param("id"), r)
	})
}

// DeleteProject 删除项目.
//
//	@Summary	删除项目
//	@Tags		项目
//	@Param		id	path	string	true	"项目 ID"
//	@Success	204
//	@Router		/api/v1/projects/{id} [delete]
func DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()

	if err := service.NewProjectService(ctx).Delete(ctx, c.Param("id")); err != nil {
		respondError(c, "projects.delete", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// EditProjectBlocks 对项目正文执行一次内容块编辑.
//
//	@Summary		编辑内容块
//	@Description	op 取值 add / remove / move_up / move_down / update / add_image / remove_image
//	@Tags			项目
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"项目 ID"
//	@Param			body	body		content.Op	true	"编辑操作"
//	@Success		200		{object}	model.Project
//	@Router			/api/v1/projects/{id}/blocks [post]
func EditProjectBlocks(c *gin.Context) {
	var op content.Op
	handleOperation(c, "projects.blocks", &op, func(ctx context.Context, r *content.Op) (*model.Project, error) {
		return service.NewProjectService(ctx).ApplyBlockOp(ctx, c.Param("id"), *r)
	})
}

// ListGallery 返回已发布项目，?category= 为 All 或空时不过滤.
//
//	@Summary	公开图库
//	@Tags		图库
//	@Produce	json
//	@Param		category	query		string	false	"主分类或分类"
//	@Success	200			{object}	types.ProjectsResponse
//	@Router		/api/v1/gallery [get]
func ListGallery(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := service.NewProjectService(ctx).ListPublished(ctx, c.Query("category"))
	if err != nil {
		respondError(c, "gallery.list", err)
		return
	}

	c.JSON(http.StatusOK, types.ProjectsResponse{Projects: projects, Total: len(projects)})
}

// GetGallery 获取一个已发布项目.
//
//	@Summary	公开项目详情
//	@Tags		图库
//	@Produce	json
//	@Param		id	path		string	true	"项目 ID"
//	@Success	200	{object}	model.Project
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/gallery/{id} [get]
func GetGallery(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := service.NewProjectService(ctx).GetPublished(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "gallery.get", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// GalleryCategories 返回主分类.
func GalleryCategories(c *gin.Context) {
	c.JSON(http.StatusOK, types.CategoriesResponse{Categories: model.MainCategories})
}
