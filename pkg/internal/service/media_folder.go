package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/internal/types"
	nlog "github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/queue"
)

// 目录标记对象类型.
const (
	MarkerKeep = "keep" // 零字节 .keep
	MarkerPNG  = "png"  // 1x1 透明 .placeholder.png
)

var (
	placeholderOnce sync.Once
	placeholderPNG  []byte
)

// placeholder 返回 1x1 透明 PNG.
func placeholder() []byte {
	placeholderOnce.Do(func() {
		var buf bytes.Buffer

		_ = png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
		placeholderPNG = buf.Bytes()
	})

	return placeholderPNG
}

// CreateFolder 在 parent 下新建目录，即上传一个标记对象.
// 未指定 marker 时，project-images 存储桶使用 PNG 标记，其他存储桶使用 .keep.
func (s *MediaService) CreateFolder(ctx context.Context, req *types.CreateFolderRequest) (*types.CreateFolderResponse, error) {
	bucket, err := s.Bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	if !browser.ValidName(req.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, req.Name)
	}

	marker := req.Marker
	if marker == "" {
		marker = MarkerKeep
		if bucket == configs.BucketProjectImages {
			marker = MarkerPNG
		}
	}

	dir := browser.Join(req.Path, req.Name)

	var (
		name string
		data []byte
		ct   string
	)

	switch marker {
	case MarkerKeep:
		name, ct = browser.KeepMarker, "application/octet-stream"
	case MarkerPNG:
		name, data, ct = browser.PlaceholderMarker, placeholder(), "image/png"
	default:
		return nil, invalid("unknown folder marker %q", marker)
	}

	_, err = s.store.Upload(ctx, bucket, browser.Join(dir, name), bytes.NewReader(data), int64(len(data)), object.UploadOptions{
		ContentType:  ct,
		CacheControl: s.storage.GetCacheControl(),
	})
	if err != nil {
		return nil, err
	}

	emit(ctx, s.events, s.eventsCfg().Folder, queue.TopicMediaFolderCreated, queue.MediaFolderPayload{
		Bucket: bucket,
		Path:   dir,
		Actor:  actor(ctx),
	})

	return &types.CreateFolderResponse{Bucket: bucket, Path: dir, Marker: marker}, nil
}

// DeleteFolder 递归删除目录下的全部对象（含标记对象），按页列举直到某页不足 limit 条.
func (s *MediaService) DeleteFolder(ctx context.Context, req *types.DeleteFolderRequest) (*types.DeleteFolderResponse, error) {
	bucket, err := s.Bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	dir := browser.Clean(req.Path)
	if dir == "" {
		return nil, fmt.Errorf("%w: refusing to delete the bucket root", ErrInvalidName)
	}

	keys, err := s.collectKeys(ctx, bucket, dir)
	if err != nil {
		return nil, err
	}

	limit := s.listLimit()
	for start := 0; start < len(keys); start += limit {
		end := min(start+limit, len(keys))
		if err := s.store.Remove(ctx, bucket, keys[start:end]); err != nil {
			return nil, fmt.Errorf("remove %s (%d/%d removed): %w", dir, start, len(keys), err)
		}
	}

	nlog.Logger().Info().Str("bucket", bucket).Str("path", dir).Int("removed", len(keys)).Msg("folder deleted")

	emit(ctx, s.events, s.eventsCfg().Folder, queue.TopicMediaFolderDeleted, queue.MediaFolderPayload{
		Bucket:  bucket,
		Path:    dir,
		Removed: len(keys),
		Actor:   actor(ctx),
	})

	return &types.DeleteFolderResponse{Bucket: bucket, Path: dir, Removed: len(keys)}, nil
}

// RenameFolder 把目录下的每个对象移动到新目录名下，逐个对象记录结果.
func (s *MediaService) RenameFolder(ctx context.Context, req *types.RenameFolderRequest) (*types.MoveResponse, error) {
	bucket, err := s.Bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	dir := browser.Clean(req.Path)
	if dir == "" || !browser.ValidName(req.NewName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, req.NewName)
	}

	target := browser.Join(browser.Parent(dir), req.NewName)
	resp := &types.MoveResponse{Bucket: bucket, Results: make([]types.MoveResult, 0, DefaultSliceCapacity)}

	if target == dir {
		return resp, nil
	}

	keys, err := s.collectKeys(ctx, bucket, dir)
	if err != nil {
		return nil, err
	}

	prefix := browser.Prefix(dir)

	for _, key := range keys {
		dst := browser.Join(target, key[len(prefix):])
		res, _ := s.relocate(ctx, bucket, key, dst, "")
		resp.Add(res)
	}

	return resp, nil
}

// collectKeys 递归收集目录下全部对象键，每一级按页列举.
func (s *MediaService) collectKeys(ctx context.Context, bucket, dir string) ([]string, error) {
	limit := s.listLimit()
	keys := make([]string, 0, DefaultSliceCapacity)

	var subdirs []string

	for offset := 0; ; offset += limit {
		page, err := s.store.List(ctx, bucket, browser.Prefix(dir), object.ListOptions{
			Limit:  limit,
			Offset: offset,
			SortBy: object.SortByName,
		})
		if err != nil {
			return nil, err
		}

		for _, e := range page {
			if e.IsFolder() {
				subdirs = append(subdirs, browser.Join(dir, e.Name))
			} else {
				keys = append(keys, browser.Join(dir, e.Name))
			}
		}

		if len(page) < limit {
			break
		}
	}

	for _, sub := range subdirs {
		nested, err := s.collectKeys(ctx, bucket, sub)
		if err != nil {
			return nil, err
		}

		keys = append(keys, nested...)
	}

	return keys, nil
}

func (s *MediaService) eventsCfg() configs.MediaEventsConfig {
	return s.events.cfg.Media
}
