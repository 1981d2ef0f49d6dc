package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/internal/types"
)

// TestRenameSameNameIsNoop 测试结果名称不变时不发出任何存储调用.
func TestRenameSameNameIsNoop(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "photos/cat.png", "cat")

	svc := service.NewMediaService(e.ctx)
	e.mem.ResetCalls()

	res, err := svc.Rename(e.ctx, &types.RenameRequest{Path: "photos/cat.png", NewName: "cat"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Changed)
	assert.Equal(t, "photos/cat.png", res.To)
	assert.Empty(t, e.mem.Calls())
}

// TestRenameKeepsExtension 测试新名称缺少扩展名时沿用原扩展名，并记录完成的移动意图.
func TestRenameKeepsExtension(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "photos/cat.png", "cat")

	svc := service.NewMediaService(e.ctx)

	res, err := svc.Rename(e.ctx, &types.RenameRequest{Path: "photos/cat.png", NewName: "kitten"})
	require.NoError(t, err)

	assert.Equal(t, "photos/kitten.png", res.To)
	assert.True(t, res.Changed)
	assert.Equal(t, string(model.IntentDone), res.Status)
	assert.Equal(t, []string{"photos/kitten.png"}, e.keys("media"))

	intents, err := svc.ListIntents(e.ctx, false)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, res.IntentID, intents[0].ID)
	assert.Equal(t, model.IntentDone, intents[0].Status)

	_, err = svc.Rename(e.ctx, &types.RenameRequest{Path: "photos/kitten.png", NewName: "a/b"})
	assert.ErrorIs(t, err, service.ErrInvalidName)
}

// TestRenameIfMatch 测试 ETag 不一致时返回冲突且不修改对象.
func TestRenameIfMatch(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "a.png", "v1")

	svc := service.NewMediaService(e.ctx)

	_, err := svc.Rename(e.ctx, &types.RenameRequest{Path: "a.png", NewName: "b.png", IfMatch: `"stale"`})
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, []string{"a.png"}, e.keys("media"))

	info, err := e.mem.Stat(e.ctx, "media", "a.png")
	require.NoError(t, err)

	_, err = svc.Rename(e.ctx, &types.RenameRequest{Path: "a.png", NewName: "b.png", IfMatch: `"` + info.ETag + `"`})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png"}, e.keys("media"))
}

// TestMoveSameLocation 测试移动到所在目录时报错.
func TestMoveSameLocation(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "docs/a.txt", "a")

	_, err := service.NewMediaService(e.ctx).Move(e.ctx, &types.MoveRequest{Paths: []string{"docs/a.txt"}, Destination: "docs/"})
	assert.ErrorIs(t, err, service.ErrSameLocation)
}

// TestMoveBatchRecordsPerItem 测试批量移动逐项记录成功与失败.
func TestMoveBatchRecordsPerItem(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "a.png", "a")
	e.put(t, "media", "b.png", "b")

	resp, err := service.NewMediaService(e.ctx).Move(e.ctx, &types.MoveRequest{
		Paths:       []string{"a.png", "missing.png", "b.png"},
		Destination: "archive",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Success)
	assert.Equal(t, 1, resp.Failed)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Equal(t, []string{"archive/a.png", "archive/b.png"}, e.keys("media"))

	_, err = service.NewMediaService(e.ctx).Move(e.ctx, &types.MoveRequest{
		Paths:       []string{"archive/a.png", "archive/b.png"},
		Destination: "x",
		IfMatch:     "abc",
	})
	assert.True(t, service.IsValidation(err))
}

// TestMoveWithoutNativeCopy 测试驱动不支持复制时退回下载再上传.
func TestMoveWithoutNativeCopy(t *testing.T) {
	e := newEnv(t, withMemory(object.WithoutCopy()))
	e.put(t, "media", "clip.mp4", "video-bytes")

	res, err := service.NewMediaService(e.ctx).MoveFile(e.ctx, "media", "clip.mp4", "videos")
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.Equal(t, 1, e.mem.CountCalls("download"))

	data, err := e.mem.Download(e.ctx, "media", "videos/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
	assert.False(t, e.has("media", "clip.mp4"))
}

// TestMoveMissingSourceOntoExisting 测试源对象不存在时即使目标已存在也报告失败.
func TestMoveMissingSourceOntoExisting(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "b/x.png", "old")
	e.put(t, "media", "y.png", "y")

	svc := service.NewMediaService(e.ctx)

	_, err := svc.Move(e.ctx, &types.MoveRequest{Paths: []string{"a/x.png"}, Destination: "b"})
	assert.ErrorIs(t, err, object.ErrNotFound)

	resp, err := svc.Move(e.ctx, &types.MoveRequest{Paths: []string{"a/x.png", "y.png"}, Destination: "b"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Failed)
	assert.False(t, resp.Results[0].Success)
	assert.False(t, resp.Results[0].Changed)
	assert.Equal(t, string(model.IntentFailed), resp.Results[0].Status)
	assert.True(t, resp.Results[1].Success)
	assert.Equal(t, []string{"b/x.png", "b/y.png"}, e.keys("media"))

	data, err := e.mem.Download(e.ctx, "media", "b/x.png")
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

// TestReconcileResumesCopiedPending 测试续跑 pending 意图时，源已删除且目标存在视为复制已完成.
func TestReconcileResumesCopiedPending(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "b/a.png", "a")

	in := &model.MoveIntent{
		ID:     "01HZZZZZZZZZZZZZZZZZZZZZZA",
		Bucket: "media",
		SrcKey: "a.png",
		DstKey: "b/a.png",
		Status: model.IntentPending,
	}
	require.NoError(t, e.mgr.DB.Create(in).Error)

	out, err := service.NewMediaService(e.ctx).ReconcileIntents(e.ctx, 0, service.DefaultIntentMaxAttempts)
	require.NoError(t, err)

	assert.Equal(t, &types.ReconcileResult{Checked: 1, Done: 1}, out)
	assert.Equal(t, []string{"b/a.png"}, e.keys("media"))
}

// TestMoveRetriesRemove 测试源对象删除失败后按次数重试.
func TestMoveRetriesRemove(t *testing.T) {
	e := newEnv(t, withMemory(object.WithFailingRemove(2)))
	e.put(t, "media", "a.png", "a")

	svc := service.NewMediaService(e.ctx, service.WithRemoveRetry(3, time.Millisecond))

	res, err := svc.MoveFile(e.ctx, "media", "a.png", "b")
	require.NoError(t, err)

	assert.Equal(t, string(model.IntentDone), res.Status)
	assert.Equal(t, 3, e.mem.CountCalls("remove"))
	assert.Equal(t, []string{"b/a.png"}, e.keys("media"))
}

// TestReconcileCopiedIntent 测试删除一直失败时意图停留在 copied，由补偿完成.
func TestReconcileCopiedIntent(t *testing.T) {
	e := newEnv(t, withMemory(object.WithFailingRemove(2)))
	e.put(t, "media", "a.png", "a")

	svc := service.NewMediaService(e.ctx, service.WithRemoveRetry(2, 0))

	res, err := svc.MoveFile(e.ctx, "media", "a.png", "b")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, string(model.IntentCopied), res.Status)
	assert.Equal(t, []string{"a.png", "b/a.png"}, e.keys("media"))

	open, err := svc.ListIntents(e.ctx, true)
	require.NoError(t, err)
	require.Len(t, open, 1)

	out, err := svc.ReconcileIntents(e.ctx, 0, service.DefaultIntentMaxAttempts)
	require.NoError(t, err)

	assert.Equal(t, &types.ReconcileResult{Checked: 1, Done: 1}, out)
	assert.Equal(t, []string{"b/a.png"}, e.keys("media"))

	open, err = svc.ListIntents(e.ctx, true)
	require.NoError(t, err)
	assert.Empty(t, open)
}

// TestReconcileGivesUp 测试执行次数达到上限的意图被标记为 failed.
func TestReconcileGivesUp(t *testing.T) {
	e := newEnv(t, withMemory(object.WithFailingRemove(100)))
	e.put(t, "media", "a.png", "a")

	svc := service.NewMediaService(e.ctx, service.WithRemoveRetry(1, 0))

	_, err := svc.MoveFile(e.ctx, "media", "a.png", "b")
	require.NoError(t, err)

	out, err := svc.ReconcileIntents(e.ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Open)

	out, err = svc.ReconcileIntents(e.ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Failed)

	intents, err := svc.ListIntents(e.ctx, false)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, model.IntentFailed, intents[0].Status)
	assert.Contains(t, intents[0].LastError, "gave up")
}

// TestDeleteSingleRemoveCall 测试批量删除只发出一次 Remove.
func TestDeleteSingleRemoveCall(t *testing.T) {
	e := newEnv(t)
	e.put(t, "media", "a.png", "a")
	e.put(t, "media", "b.png", "b")
	e.put(t, "media", "c.png", "c")

	svc := service.NewMediaService(e.ctx)
	e.mem.ResetCalls()

	resp, err := svc.Delete(e.ctx, &types.DeleteRequest{Paths: []string{"a.png", "/b.png"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png", "b.png"}, resp.Deleted)
	assert.Equal(t, []string{"remove"}, e.mem.Calls())
	assert.Equal(t, []string{"c.png"}, e.keys("media"))

	_, err = svc.Delete(e.ctx, &types.DeleteRequest{Paths: []string{"c.png"}, IfMatch: "nope"})
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.True(t, e.has("media", "c.png"))
}
