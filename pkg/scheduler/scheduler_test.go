package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/scheduler"
)

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler()
	require.NoError(t, err)

	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

// TestRunNowRecordsSuccess 测试手动触发的任务记录运行次数与成功时间.
func TestRunNowRecordsSuccess(t *testing.T) {
	s := newScheduler(t)

	var runs int32

	require.NoError(t, s.AddCron(context.Background(), "test.ok", "0 3 * * *", func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}))

	require.NoError(t, s.RunNow("test.ok"))

	require.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("test.ok")
		return err == nil && info.Runs == 1
	}, 2*time.Second, 10*time.Millisecond)

	info, _ := s.GetJobInfoByName("test.ok")
	assert.Equal(t, scheduler.StatusScheduled, info.Status)
	assert.False(t, info.LastSuccess.IsZero())
	assert.Equal(t, "0 3 * * *", info.CronExpr)
}

// TestJobErrorAndPanic 测试出错与 panic 的任务都被标记为 error.
func TestJobErrorAndPanic(t *testing.T) {
	s := newScheduler(t)
	ctx := context.Background()

	require.NoError(t, s.AddInterval(ctx, "test.err", time.Hour, func(context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, s.AddInterval(ctx, "test.panic", time.Hour, func(context.Context) error {
		panic("bad")
	}))

	require.NoError(t, s.RunNow("test.err"))
	require.NoError(t, s.RunNow("test.panic"))

	for name, msg := range map[string]string{"test.err": "boom", "test.panic": "panic in job: bad"} {
		require.Eventually(t, func() bool {
			info, _ := s.GetJobInfoByName(name)
			return info.Status == scheduler.StatusError && info.Error == msg
		}, 2*time.Second, 10*time.Millisecond, name)
	}
}

func TestDuplicateAndRemove(t *testing.T) {
	s := newScheduler(t)
	ctx := context.Background()
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddInterval(ctx, "dup", time.Hour, noop))
	require.Error(t, s.AddInterval(ctx, "dup", time.Hour, noop))
	require.Error(t, s.AddInterval(ctx, "zero", 0, noop))

	assert.Len(t, s.GetJobInfos(), 1)
	require.NoError(t, s.RemoveJobByName("dup"))
	assert.Empty(t, s.GetJobInfos())
	assert.Error(t, s.RunNow("dup"))
}
