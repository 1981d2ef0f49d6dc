package service

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/internal/types"
	nlog "github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/metrics"
	"github.com/feyabloom/studio/pkg/queue"
)

const (
	// reconcileBatch 每次补偿处理的意图数.
	reconcileBatch = 100
	// DefaultIntentMaxAttempts 意图被放弃前的最大执行次数.
	DefaultIntentMaxAttempts = 5
)

// Rename 在同一目录内重命名文件.
// 新名称不带扩展名时沿用原扩展名；结果名称与原名称相同时不发出任何存储调用.
func (s *MediaService) Rename(ctx context.Context, req *types.RenameRequest) (*types.MoveResult, error) {
	bucket, err := s.Bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	src := browser.Clean(req.Path)
	newName := strings.TrimSpace(req.NewName)

	if src == "" || !browser.ValidName(newName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, req.NewName)
	}

	dir, name := browser.Split(src)
	if browser.Ext(newName) == "" {
		newName += browser.Ext(name)
	}

	if newName == name {
		return &types.MoveResult{From: src, To: src, Success: true}, nil
	}

	res, err := s.relocate(ctx, bucket, src, browser.Join(dir, newName), req.IfMatch)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// Move 把文件移动到目标目录，文件名不变.
// 只有一个路径时直接返回错误，多个路径时逐项记录结果.
func (s *MediaService) Move(ctx context.Context, req *types.MoveRequest) (*types.MoveResponse, error) {
	bucket, err := s.Bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	if len(req.Paths) == 0 {
		return nil, invalid("no paths provided")
	}

	if req.IfMatch != "" && len(req.Paths) != 1 {
		return nil, invalid("if_match requires exactly one path")
	}

	dest := browser.Clean(req.Destination)
	resp := &types.MoveResponse{Bucket: bucket, Results: make([]types.MoveResult, 0, len(req.Paths))}

	for _, p := range req.Paths {
		src := browser.Clean(p)
		_, name := browser.Split(src)

		res, err := s.relocate(ctx, bucket, src, browser.Join(dest, name), req.IfMatch)
		if err != nil && len(req.Paths) == 1 {
			return nil, err
		}

		resp.Add(res)
	}

	return resp, nil
}

// MoveFile 移动单个文件.
func (s *MediaService) MoveFile(ctx context.Context, bucket, src, destDir string) (*types.MoveResult, error) {
	resp, err := s.Move(ctx, &types.MoveRequest{Bucket: bucket, Paths: []string{src}, Destination: destDir})
	if err != nil {
		return nil, err
	}

	return &resp.Results[0], nil
}

// Delete 删除一个或多个文件，所有路径在一次 Remove 调用中提交.
func (s *MediaService) Delete(ctx context.Context, req *types.DeleteRequest) (*types.DeleteResponse, error) {
	bucket, err := s.Bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	if len(req.Paths) == 0 {
		return nil, invalid("no paths provided")
	}

	keys := make([]string, 0, len(req.Paths))

	for _, p := range req.Paths {
		k := browser.Clean(p)
		if k == "" {
			return nil, fmt.Errorf("%w: empty path", ErrInvalidName)
		}

		keys = append(keys, k)
	}

	if req.IfMatch != "" {
		if len(keys) != 1 {
			return nil, invalid("if_match requires exactly one path")
		}

		if err := s.checkETag(ctx, bucket, keys[0], req.IfMatch); err != nil {
			return nil, err
		}
	}

	if err := s.store.Remove(ctx, bucket, keys); err != nil {
		return nil, err
	}

	emit(ctx, s.events, s.eventsCfg().Deleted, queue.TopicMediaDeleted, queue.MediaDeletedPayload{
		Bucket: bucket,
		Keys:   keys,
		Actor:  actor(ctx),
	})

	return &types.DeleteResponse{Bucket: bucket, Deleted: keys}, nil
}

// relocate 把 src 移动到 dst：先记录移动意图，再复制、校验目标、删除源对象.
func (s *MediaService) relocate(ctx context.Context, bucket, src, dst, ifMatch string) (types.MoveResult, error) {
	res := types.MoveResult{From: src, To: dst}

	fail := func(err error) (types.MoveResult, error) {
		res.Error = err.Error()
		return res, err
	}

	if src == "" {
		return fail(fmt.Errorf("%w: empty path", ErrInvalidName))
	}

	if src == dst {
		return fail(fmt.Errorf("%w: %s", ErrSameLocation, src))
	}

	if ifMatch != "" {
		if err := s.checkETag(ctx, bucket, src, ifMatch); err != nil {
			return fail(err)
		}
	}

	in := &model.MoveIntent{
		ID:     ulid.MustNew(ulid.Timestamp(s.now()), crand.Reader).String(),
		Bucket: bucket,
		SrcKey: src,
		DstKey: dst,
		Status: model.IntentPending,
	}

	if s.db != nil {
		if err := s.db.WithContext(ctx).Create(in).Error; err != nil {
			return fail(fmt.Errorf("journal move intent: %w", err))
		}

		metrics.MoveIntents.WithLabelValues(string(model.IntentPending)).Inc()
	}

	res.IntentID = in.ID

	err := s.runIntent(ctx, in, false)
	res.Status = string(in.Status)

	if err != nil {
		return fail(err)
	}

	res.Success = true
	res.Changed = true

	emit(ctx, s.events, s.eventsCfg().Moved, queue.TopicMediaMoved, queue.MediaMovedPayload{
		Bucket:   bucket,
		From:     src,
		To:       dst,
		IntentID: in.ID,
		Actor:    actor(ctx),
	})

	return res, nil
}

// runIntent 从意图当前状态继续执行，resume 表示由补偿任务续跑.
// 源对象删除失败时意图停留在 copied，由补偿任务继续，调用方视为移动成功.
func (s *MediaService) runIntent(ctx context.Context, in *model.MoveIntent, resume bool) error {
	in.Attempts++

	if in.Status == model.IntentPending {
		err := s.copyVerified(ctx, in.Bucket, in.SrcKey, in.DstKey)

		// 续跑时源对象已不存在而目标存在：上一次执行已完成复制
		if err != nil && !(resume && errors.Is(err, object.ErrNotFound) && s.exists(ctx, in.Bucket, in.DstKey)) {
			s.transition(ctx, in, model.IntentFailed, err)
			return err
		}

		s.transition(ctx, in, model.IntentCopied, nil)
	}

	if err := s.removeWithRetry(ctx, in.Bucket, in.SrcKey); err != nil {
		nlog.Logger().Warn().Err(err).Str("intent", in.ID).Str("src", in.SrcKey).Msg("source kept, reconcile will retry")
		s.transition(ctx, in, model.IntentCopied, err)

		return nil
	}

	s.transition(ctx, in, model.IntentDone, nil)

	return nil
}

// copyVerified 复制对象并确认目标存在；驱动不支持原生复制时退回下载再上传.
func (s *MediaService) copyVerified(ctx context.Context, bucket, src, dst string) error {
	err := s.store.Copy(ctx, bucket, src, dst)
	if errors.Is(err, object.ErrNotSupported) {
		err = s.copyByDownload(ctx, bucket, src, dst)
	}

	if err != nil {
		return err
	}

	if _, err := s.store.Stat(ctx, bucket, dst); err != nil {
		return fmt.Errorf("verify copy of %s: %w", dst, err)
	}

	return nil
}

func (s *MediaService) copyByDownload(ctx context.Context, bucket, src, dst string) error {
	info, err := s.store.Stat(ctx, bucket, src)
	if err != nil {
		return err
	}

	data, err := s.store.Download(ctx, bucket, src)
	if err != nil {
		return err
	}

	_, err = s.store.Upload(ctx, bucket, dst, bytes.NewReader(data), int64(len(data)), object.UploadOptions{
		ContentType:  info.ContentType,
		CacheControl: s.storage.GetCacheControl(),
		Upsert:       true,
	})

	return err
}

// removeWithRetry 删除单个对象，失败时按指数退避重试.
func (s *MediaService) removeWithRetry(ctx context.Context, bucket, key string) error {
	backoff := s.removeBackoff

	var err error

	for attempt := 1; attempt <= s.removeAttempts; attempt++ {
		if err = s.store.Remove(ctx, bucket, []string{key}); err == nil {
			return nil
		}

		if attempt == s.removeAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
	}

	return fmt.Errorf("remove %s after %d attempts: %w", key, s.removeAttempts, err)
}

func (s *MediaService) transition(ctx context.Context, in *model.MoveIntent, status model.IntentStatus, cause error) {
	in.Status = status
	in.LastError = ""

	if cause != nil {
		in.LastError = cause.Error()
	}

	if s.db == nil {
		return
	}

	metrics.MoveIntents.WithLabelValues(string(status)).Inc()

	if err := s.db.WithContext(ctx).Save(in).Error; err != nil {
		nlog.Logger().Error().Err(err).Str("intent", in.ID).Str("status", string(status)).Msg("save move intent failed")
	}
}

func (s *MediaService) exists(ctx context.Context, bucket, key string) bool {
	_, err := s.store.Stat(ctx, bucket, key)
	return err == nil
}

// checkETag 比较对象当前 ETag 与 ifMatch，不一致时返回 ErrConflict.
func (s *MediaService) checkETag(ctx context.Context, bucket, key, ifMatch string) error {
	info, err := s.store.Stat(ctx, bucket, key)
	if err != nil {
		return err
	}

	if strings.Trim(info.ETag, `"`) != strings.Trim(ifMatch, `"`) {
		return fmt.Errorf("%w: %s", ErrConflict, key)
	}

	return nil
}

// ListIntents 返回移动意图，open 为 true 时只返回未完成的意图.
func (s *MediaService) ListIntents(ctx context.Context, open bool) ([]model.MoveIntent, error) {
	intents := make([]model.MoveIntent, 0, DefaultSliceCapacity)
	if s.db == nil {
		return intents, nil
	}

	q := s.db.WithContext(ctx).Order("created_at asc")
	if open {
		q = q.Where("status IN ?", []model.IntentStatus{model.IntentPending, model.IntentCopied})
	}

	if err := q.Find(&intents).Error; err != nil {
		return nil, fmt.Errorf("list move intents: %w", err)
	}

	return intents, nil
}

// ReconcileIntents 继续执行停留超过 olderThan 的未完成意图；
// 执行次数达到 maxAttempts 的意图被标记为 failed.
func (s *MediaService) ReconcileIntents(ctx context.Context, olderThan time.Duration, maxAttempts int) (*types.ReconcileResult, error) {
	res := &types.ReconcileResult{}
	if s.db == nil {
		return res, nil
	}

	if maxAttempts <= 0 {
		maxAttempts = DefaultIntentMaxAttempts
	}

	var intents []model.MoveIntent

	err := s.db.WithContext(ctx).
		Where("status IN ? AND updated_at <= ?",
			[]model.IntentStatus{model.IntentPending, model.IntentCopied}, s.now().Add(-olderThan)).
		Order("created_at asc").
		Limit(reconcileBatch).
		Find(&intents).Error
	if err != nil {
		return nil, fmt.Errorf("load move intents: %w", err)
	}

	for i := range intents {
		in := &intents[i]
		res.Checked++

		if in.Attempts >= maxAttempts {
			s.transition(ctx, in, model.IntentFailed, fmt.Errorf("gave up after %d attempts: %s", in.Attempts, in.LastError))
			res.Failed++

			continue
		}

		_ = s.runIntent(ctx, in, true)

		switch in.Status {
		case model.IntentDone:
			res.Done++
		case model.IntentFailed:
			res.Failed++
		default:
			res.Open++
		}
	}

	return res, nil
}
