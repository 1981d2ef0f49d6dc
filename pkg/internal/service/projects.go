package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/feyabloom/studio/pkg/cache"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/content"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/storage/db"
	"github.com/feyabloom/studio/pkg/internal/types"
	nlog "github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/queue"
	"github.com/feyabloom/studio/pkg/rule"
)

const (
	// GalleryNamespace 公开图库缓存的命名空间.
	GalleryNamespace = "gallery"
	// CategoryAll 不按分类过滤.
	CategoryAll = "All"

	projectOrder = "order_index asc, created_at desc"
)

// ProjectService 负责作品集项目的增删改查与公开图库.
type ProjectService struct {
	db       *db.Client
	cache    *cache.Cache
	cacheTTL time.Duration
	events   *events
}

// NewProjectService 从 context 获取依赖实例.
func NewProjectService(c context.Context) *ProjectService {
	mgr := managerFrom(c)
	if mgr.DB == nil {
		nlog.Logger().Fatal().Msg("db client not initialized")
	}

	cfg := configs.GetConfig()

	return &ProjectService{
		db:       mgr.DB,
		cache:    sharedCache(mgr.KV, GalleryNamespace),
		cacheTTL: cfg.Server.GetCacheTTL(),
		events:   newEvents(mgr.MQ, cfg.Events),
	}
}

// List 返回全部项目，按 order_index 升序、created_at 降序.
func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	projects := make([]model.Project, 0, DefaultSliceCapacity)
	if err := s.db.WithContext(ctx).Order(projectOrder).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return projects, nil
}

// Get 按 ID 获取项目.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.find(ctx, id, false)
}

// ListPublished 返回已发布的项目，category 为空或 All 时不过滤；结果经过缓存.
// 分类同时匹配 main_category 与 category.
func (s *ProjectService) ListPublished(ctx context.Context, category string) ([]model.Project, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, CategoryAll) {
		category = ""
	}

	load := func() ([]model.Project, error) {
		projects := make([]model.Project, 0, DefaultSliceCapacity)

		q := s.db.WithContext(ctx).Where("published = ?", true)
		if category != "" {
			q = q.Where("main_category = ? OR category = ?", category, category)
		}

		if err := q.Order(projectOrder).Find(&projects).Error; err != nil {
			return nil, fmt.Errorf("list published projects: %w", err)
		}

		return projects, nil
	}

	if s.cache == nil || s.cacheTTL <= 0 {
		return load()
	}

	return cache.GetOrSet(ctx, s.cache, cache.Key("published", category), load, s.cacheTTL)
}

// GetPublished 获取一个已发布的项目，未发布视为不存在.
func (s *ProjectService) GetPublished(ctx context.Context, id string) (*model.Project, error) {
	return s.find(ctx, id, true)
}

// Create 新建项目.
func (s *ProjectService) Create(ctx context.Context, req *types.ProjectRequest) (*model.Project, error) {
	if err := validateProject(req); err != nil {
		return nil, err
	}

	p := &model.Project{}
	applyProject(p, req)

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.changed(ctx, p, true)

	return p, nil
}

// Update 整体更新项目.
func (s *ProjectService) Update(ctx context.Context, id string, req *types.ProjectRequest) (*model.Project, error) {
	if err := validateProject(req); err != nil {
		return nil, err
	}

	p, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}

	applyProject(p, req)

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.changed(ctx, p, false)

	return p, nil
}

// Delete 删除项目.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{})
	if res.Error != nil {
		return fmt.Errorf("delete project: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrProjectNotFound
	}

	s.InvalidateGallery(ctx)

	emit(ctx, s.events, s.events.cfg.Project.Deleted, queue.TopicProjectDeleted, queue.ProjectPayload{
		ID:    id,
		Actor: actor(ctx),
	})

	return nil
}

// ApplyBlockOp 对项目正文执行一次内容块编辑并保存.
func (s *ProjectService) ApplyBlockOp(ctx context.Context, id string, op content.Op) (*model.Project, error) {
	p, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}

	blocks, err := p.Content.Apply(op)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	p.Content = blocks

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update project content: %w", err)
	}

	s.changed(ctx, p, false)

	return p, nil
}

// InvalidateGallery 清空公开图库缓存.
func (s *ProjectService) InvalidateGallery(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Clear(ctx); err != nil {
		nlog.Logger().Warn().Err(err).Msg("clear gallery cache failed")
	}
}

// WarmGallery 预热全部分类与各主分类的公开图库缓存.
func (s *ProjectService) WarmGallery(ctx context.Context) (int, error) {
	categories := append([]string{""}, model.MainCategories...)

	for _, c := range categories {
		if _, err := s.ListPublished(ctx, c); err != nil {
			return 0, err
		}
	}

	return len(categories), nil
}

func (s *ProjectService) find(ctx context.Context, id string, published bool) (*model.Project, error) {
	var p model.Project

	q := s.db.WithContext(ctx).Where("id = ?", id)
	if published {
		q = q.Where("published = ?", true)
	}

	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}

		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

func (s *ProjectService) changed(ctx context.Context, p *model.Project, created bool) {
	s.InvalidateGallery(ctx)

	emit(ctx, s.events, s.events.cfg.Project.Saved, queue.TopicProjectSaved, queue.ProjectPayload{
		ID:        p.ID,
		Title:     p.Title,
		Published: p.Published,
		Created:   created,
		Actor:     actor(ctx),
	})
}

// validateProject 保存前要求 title 与 main_category.
func validateProject(req *types.ProjectRequest) error {
	req.Title = strings.TrimSpace(req.Title)

	if err := rule.ValidateStruct(req); err != nil {
		if msg := rule.First(err); msg != "" {
			return &ValidationError{Message: msg}
		}

		return err
	}

	for i, b := range req.Content {
		if !b.Type.Valid() {
			return invalid("content[%d]: unknown block type %q", i, b.Type)
		}
	}

	return nil
}

func applyProject(p *model.Project, req *types.ProjectRequest) {
	p.Title = req.Title
	p.MainCategory = req.MainCategory
	p.Category = req.Category
	p.ShortDescription = req.ShortDescription
	p.CoverImage = req.CoverImage
	p.Year = req.Year
	p.Tags = req.Tags
	p.Content = req.Content
	p.Links = req.Links
	p.Published = req.Published
	p.OrderIndex = req.OrderIndex

	if p.Tags == nil {
		p.Tags = []string{}
	}

	if p.Content == nil {
		p.Content = content.Blocks{}
	}
}
