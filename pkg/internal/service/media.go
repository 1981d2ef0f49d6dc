package service

import (
	"context"
	"strings"
	"time"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/configs"
	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/storage/db"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/internal/types"
)

const (
	// defaultRemoveAttempts 移动后删除源对象的最大尝试次数.
	defaultRemoveAttempts = 3
	// defaultRemoveBackoff 第一次重试前的等待时间，之后每次翻倍.
	defaultRemoveBackoff = 200 * time.Millisecond
)

// MediaService 负责媒体库的列举、上传与变更操作.
type MediaService struct {
	store   object.Store
	db      *db.Client
	events  *events
	storage configs.StorageConfig
	upload  configs.UploadConfig

	removeAttempts int
	removeBackoff  time.Duration
	now            func() time.Time
}

// MediaOption 配置 MediaService.
type MediaOption func(*MediaService)

// WithRemoveRetry 设置删除源对象的尝试次数与初始退避.
func WithRemoveRetry(attempts int, backoff time.Duration) MediaOption {
	return func(s *MediaService) {
		if attempts > 0 {
			s.removeAttempts = attempts
		}

		s.removeBackoff = backoff
	}
}

// NewMediaService 从 context 获取依赖实例.
func NewMediaService(c context.Context, opts ...MediaOption) *MediaService {
	mgr := managerFrom(c)
	cfg := configs.GetConfig()

	s := &MediaService{
		store:          mgr.Objects,
		db:             mgr.DB,
		events:         newEvents(mgr.MQ, cfg.Events),
		storage:        mgr.Storage,
		upload:         cfg.Upload,
		removeAttempts: defaultRemoveAttempts,
		removeBackoff:  defaultRemoveBackoff,
		now:            time.Now,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// Buckets 返回可浏览的存储桶.
func (s *MediaService) Buckets() types.BucketsResponse {
	return types.BucketsResponse{
		Buckets: append([]string(nil), s.storage.Buckets...),
		Default: s.storage.GetDefaultBucket(),
	}
}

// Bucket 校验并返回存储桶名称，空名称表示默认存储桶.
func (s *MediaService) Bucket(name string) (string, error) {
	return resolveBucket(&s.storage, name)
}

// listLimit 单次列举的条目数.
func (s *MediaService) listLimit() int {
	if s.storage.ListLimit > 0 {
		return s.storage.ListLimit
	}

	return configs.DefaultStorageListLimit
}

// List 列举目录的一级内容：按名称升序，拆分为目录与文件，隐藏标记对象.
// 存储错误原样返回，不重试.
func (s *MediaService) List(ctx context.Context, req *types.ListMediaRequest) (*types.ListMediaResponse, error) {
	bucket, err := s.Bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	dir := browser.Clean(req.Path)

	entries, err := s.store.List(ctx, bucket, browser.Prefix(dir), object.ListOptions{
		Limit:  s.listLimit(),
		SortBy: object.SortByName,
		Search: req.Search,
	})
	if err != nil {
		return nil, err
	}

	accept := parseAccept(req.Accept)

	resp := &types.ListMediaResponse{
		Bucket:      bucket,
		Path:        dir,
		Breadcrumbs: browser.Breadcrumbs(dir),
		Folders:     make([]types.MediaFolder, 0, DefaultSliceCapacity),
		Files:       make([]types.MediaFile, 0, len(entries)),
	}

	for _, e := range entries {
		if e.IsFolder() {
			resp.Folders = append(resp.Folders, types.MediaFolder{Name: e.Name, Path: browser.Join(dir, e.Name)})
			continue
		}

		if browser.IsMarker(e.Name) {
			continue
		}

		ct := e.ContentType
		if ct == "" {
			ct = object.GuessContentType(e.Name)
		}

		if !acceptsType(accept, ct) {
			continue
		}

		key := browser.Join(dir, e.Name)

		resp.Files = append(resp.Files, types.MediaFile{
			ID:           e.ID,
			Name:         e.Name,
			Path:         key,
			Size:         e.Size,
			ContentType:  ct,
			ETag:         e.ETag,
			LastModified: e.LastModified,
			PublicURL:    s.store.PublicURL(bucket, key),
		})
	}

	return resp, nil
}

// parseAccept 把 "image,video" 解析为 MIME 前缀列表.
func parseAccept(accept string) []string {
	if strings.TrimSpace(accept) == "" {
		return nil
	}

	var out []string

	for _, part := range strings.Split(accept, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		part = strings.TrimSuffix(strings.TrimSuffix(part, "*"), "/")

		if part != "" {
			out = append(out, part+"/")
		}
	}

	return out
}

func acceptsType(prefixes []string, contentType string) bool {
	if len(prefixes) == 0 {
		return true
	}

	for _, p := range prefixes {
		if strings.HasPrefix(contentType, p) {
			return true
		}
	}

	return false
}

// actor 当前操作者，用于事件.
func actor(ctx context.Context) string {
	return ctxPkg.GetUser(ctx)
}
