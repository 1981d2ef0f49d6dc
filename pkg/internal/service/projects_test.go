package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/content"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/types"
)

func project(title, category string, order int, published bool) *types.ProjectRequest {
	return &types.ProjectRequest{
		Title:        title,
		MainCategory: category,
		OrderIndex:   order,
		Published:    published,
	}
}

func titles(ps []model.Project) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Title)
	}

	return out
}

// TestProjectValidation 测试保存前的字段校验信息.
func TestProjectValidation(t *testing.T) {
	e := newEnv(t)
	svc := service.NewProjectService(e.ctx)

	tests := []struct {
		name string
		req  *types.ProjectRequest
		want string
	}{
		{"blank title", project("   ", model.CategoryFiberArts, 0, false), "Title is required"},
		{"missing category", project("Quilt", "", 0, false), "Main category is required"},
		{"unknown category", project("Quilt", "Pottery", 0, false), "Main category must be one of"},
		{"unknown block", &types.ProjectRequest{
			Title: "Quilt", MainCategory: model.CategoryFiberArts,
			Content: content.Blocks{{Type: "carousel"}},
		}, `content[0]: unknown block type "carousel"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(e.ctx, tt.req)
			require.Error(t, err)
			assert.True(t, service.IsValidation(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	all, err := svc.List(e.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// TestProjectOrdering 测试列表按 order_index 升序、创建时间降序.
func TestProjectOrdering(t *testing.T) {
	e := newEnv(t)
	svc := service.NewProjectService(e.ctx)

	for _, req := range []*types.ProjectRequest{
		project("second", model.CategoryVisualWorks, 1, true),
		project("first", model.CategoryVisualWorks, 0, true),
		project("draft", model.CategoryVisualWorks, 0, false),
	} {
		_, err := svc.Create(e.ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(e.ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "second", all[2].Title)

	published, err := svc.ListPublished(e.ctx, service.CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, titles(published))
}

// TestPublishedGalleryCache 测试公开图库缓存与失效.
func TestPublishedGalleryCache(t *testing.T) {
	e := newEnv(t)
	svc := service.NewProjectService(e.ctx)

	p, err := svc.Create(e.ctx, &types.ProjectRequest{
		Title:        "Loom",
		MainCategory: model.CategoryFiberArts,
		Category:     "Weaving",
		Published:    true,
	})
	require.NoError(t, err)

	byMain, err := svc.ListPublished(e.ctx, model.CategoryFiberArts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Loom"}, titles(byMain))

	bySub, err := svc.ListPublished(e.ctx, "Weaving")
	require.NoError(t, err)
	assert.Equal(t, []string{"Loom"}, titles(bySub))

	// 绕过服务层修改，缓存仍返回旧结果
	require.NoError(t, e.mgr.DB.Model(&model.Project{}).Where("id = ?", p.ID).Update("title", "Loom v2").Error)

	cached, err := svc.ListPublished(e.ctx, model.CategoryFiberArts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Loom"}, titles(cached))

	svc.InvalidateGallery(e.ctx)

	fresh, err := svc.ListPublished(e.ctx, model.CategoryFiberArts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Loom v2"}, titles(fresh))

	req := project("Loom v2", model.CategoryFiberArts, 0, false)
	_, err = svc.Update(e.ctx, p.ID, req)
	require.NoError(t, err)

	hidden, err := svc.ListPublished(e.ctx, model.CategoryFiberArts)
	require.NoError(t, err)
	assert.Empty(t, hidden)

	_, err = svc.GetPublished(e.ctx, p.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)

	n, err := svc.WarmGallery(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, len(model.MainCategories)+1, n)
}

// TestProjectBlockOps 测试内容块编辑持久化.
func TestProjectBlockOps(t *testing.T) {
	e := newEnv(t)
	svc := service.NewProjectService(e.ctx)

	p, err := svc.Create(e.ctx, project("Zine", model.CategoryWrittenWorlds, 0, true))
	require.NoError(t, err)
	assert.NotNil(t, p.Content)

	_, err = svc.ApplyBlockOp(e.ctx, p.ID, content.Op{Kind: content.OpAdd, Type: content.TypeText})
	require.NoError(t, err)

	_, err = svc.ApplyBlockOp(e.ctx, p.ID, content.Op{Kind: content.OpAdd, Type: content.TypeGallery})
	require.NoError(t, err)

	_, err = svc.ApplyBlockOp(e.ctx, p.ID, content.Op{
		Kind:  content.OpAddGalleryImages,
		Index: 1,
		URLs:  []string{"https://cdn.test/a.png", "https://cdn.test/b.png"},
	})
	require.NoError(t, err)

	_, err = svc.ApplyBlockOp(e.ctx, p.ID, content.Op{Kind: content.OpMoveUp, Index: 1})
	require.NoError(t, err)

	got, err := svc.Get(e.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Content, 2)
	assert.Equal(t, content.TypeGallery, got.Content[0].Type)
	assert.Equal(t, []string{"https://cdn.test/a.png", "https://cdn.test/b.png"}, got.Content[0].Images)

	_, err = svc.ApplyBlockOp(e.ctx, p.ID, content.Op{Kind: "shuffle"})
	assert.True(t, service.IsValidation(err))
}

// TestProjectNotFound 测试不存在的项目.
func TestProjectNotFound(t *testing.T) {
	e := newEnv(t)
	svc := service.NewProjectService(e.ctx)

	_, err := svc.Get(e.ctx, "missing")
	assert.ErrorIs(t, err, service.ErrProjectNotFound)

	_, err = svc.Update(e.ctx, "missing", project("x", model.CategoryVisualWorks, 0, false))
	assert.ErrorIs(t, err, service.ErrProjectNotFound)

	assert.ErrorIs(t, svc.Delete(e.ctx, "missing"), service.ErrProjectNotFound)
}
