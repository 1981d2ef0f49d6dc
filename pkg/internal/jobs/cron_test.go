package jobs_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/configs"
	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/jobs"
	"github.com/feyabloom/studio/pkg/internal/model"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/internal/storage/db"
	"github.com/feyabloom/studio/pkg/internal/storage/kv"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/scheduler"
)

func newManager(t *testing.T) (*storage.Manager, *object.Memory) {
	t.Helper()

	ctx := context.Background()
	cfg := configs.Default()
	cfg.Events.Enabled = false
	configs.SetConfig(cfg)

	mem := object.NewMemory(&cfg.Storage)
	require.NoError(t, mem.EnsureBucket(ctx, configs.BucketMedia))

	dbc, err := db.New(ctx, &configs.DBConfig{
		Type:         configs.SQLite,
		Database:     "jobs",
		DSN:          "file:jobs_" + t.Name() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, dbc.Migrate(ctx, model.All()...))

	kvc, err := kv.NewKVClient(ctx, &cfg.KV)
	require.NoError(t, err)

	mgr := &storage.Manager{Objects: mem, DB: dbc, KV: kvc, Storage: cfg.Storage}
	t.Cleanup(func() { _ = mgr.Close() })

	return mgr, mem
}

// TestRegisterJobs 测试注册的任务名称与手动触发.
func TestRegisterJobs(t *testing.T) {
	mgr, mem := newManager(t)

	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Shutdown() })

	require.NoError(t, jobs.RegisterJobs(sched, mgr))

	infos := sched.GetJobInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, jobs.JobWarmGallery, infos[0].Name)
	assert.Equal(t, jobs.JobReconcileIntents, infos[1].Name)
	assert.Equal(t, jobs.CronWarmGallery, infos[0].CronExpr)

	sched.Start()

	// 一个停留在 copied 的意图
	ctx := context.Background()
	_, err = mem.Upload(ctx, configs.BucketMedia, "a.png", bytes.NewReader([]byte("a")), 1, object.UploadOptions{})
	require.NoError(t, err)
	_, err = mem.Upload(ctx, configs.BucketMedia, "b/a.png", bytes.NewReader([]byte("a")), 1, object.UploadOptions{})
	require.NoError(t, err)

	in := &model.MoveIntent{ID: "01HZZZZZZZZZZZZZZZZZZZZZZZ", Bucket: configs.BucketMedia, SrcKey: "a.png", DstKey: "b/a.png", Status: model.IntentCopied}
	require.NoError(t, mgr.DB.Create(in).Error)
	require.NoError(t, mgr.DB.Model(in).UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	require.NoError(t, sched.RunNow(jobs.JobReconcileIntents))

	assert.Eventually(t, func() bool {
		info, err := sched.GetJobInfoByName(jobs.JobReconcileIntents)
		return err == nil && info.Runs > 0 && info.Status != scheduler.StatusRunning
	}, 2*time.Second, 20*time.Millisecond)

	var got model.MoveIntent
	require.NoError(t, mgr.DB.First(&got, "id = ?", in.ID).Error)
	assert.Equal(t, model.IntentDone, got.Status)
	assert.Equal(t, []string{"b/a.png"}, mem.Keys(configs.BucketMedia))

	ok := jobs.WarmGallery(ctxPkg.WithStorageManager(ctx, mgr))
	assert.NoError(t, ok)
}

// TestRegisterJobsRequiresManager 测试缺少依赖时报错.
func TestRegisterJobsRequiresManager(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Shutdown() })

	assert.Error(t, jobs.RegisterJobs(sched, nil))
	assert.Error(t, jobs.RegisterJobs(nil, &storage.Manager{}))
}
