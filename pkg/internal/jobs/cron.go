// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"errors"
	"fmt"

	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/scheduler"
)

// RegisterJobs 配置业务定时任务：
//   - 每 5 分钟补偿停留在 pending/copied 的移动意图
//   - 每 10 分钟预热公开图库缓存
func RegisterJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	var errs []error

	if mgr.DB != nil {
		errs = append(errs,
			sched.AddInterval(baseCtx, JobReconcileIntents, ReconcileEvery, ReconcileIntents),
			sched.AddCron(baseCtx, JobWarmGallery, CronWarmGallery, WarmGallery),
		)
	}

	return errors.Join(errs...)
}

// ReconcileIntents 继续执行中断的移动意图.
func ReconcileIntents(ctx context.Context) error {
	l := log.Logger().With().Str("job", JobReconcileIntents).Logger()

	res, err := service.NewMediaService(ctx).ReconcileIntents(ctx, ReconcileOlderThan, service.DefaultIntentMaxAttempts)
	if err != nil {
		l.Error().Err(err).Msg("reconcile move intents failed")
		return err
	}

	if res.Checked > 0 {
		l.Info().Int("checked", res.Checked).Int("done", res.Done).Int("failed", res.Failed).Int("open", res.Open).
			Msg("move intents reconciled")
	}

	return nil
}

// WarmGallery 预热全部分类的公开图库缓存.
func WarmGallery(ctx context.Context) error {
	n, err := service.NewProjectService(ctx).WarmGallery(ctx)
	if err != nil {
		log.Logger().Error().Err(err).Str("job", JobWarmGallery).Msg("warm gallery cache failed")
		return err
	}

	log.Logger().Debug().Str("job", JobWarmGallery).Int("categories", n).Msg("gallery cache warmed")

	return nil
}
