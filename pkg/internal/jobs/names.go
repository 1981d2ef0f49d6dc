package jobs

import "time"

// 任务名称常量，便于统一管理与引用.
const (
	JobReconcileIntents = "media.intents.reconcile"
	JobWarmGallery      = "gallery.cache.warm"
)

// 调度参数.
const (
	// ReconcileEvery 移动意图补偿的执行间隔.
	ReconcileEvery = 5 * time.Minute
	// ReconcileOlderThan 只补偿停留超过该时长的意图，避开正在执行的移动.
	ReconcileOlderThan = 2 * time.Minute
	// CronWarmGallery 每 10 分钟预热一次公开图库缓存.
	CronWarmGallery = "*/10 * * * *"
)
