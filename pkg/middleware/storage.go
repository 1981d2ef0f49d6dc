package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/mail"
	"github.com/feyabloom/studio/pkg/internal/storage"
	"github.com/feyabloom/studio/pkg/scheduler"
)

// StorageMiddleware 把存储管理器注入请求 context，服务层由此获取依赖.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// MailMiddleware 把邮件中继注入请求 context.
func MailMiddleware(relay mail.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		if relay != nil {
			c.Request = c.Request.WithContext(context.WithMailRelay(c.Request.Context(), relay))
		}

		c.Next()
	}
}

// SchedulerMiddleware 把任务调度器注入请求 context.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Request = c.Request.WithContext(context.WithScheduler(c.Request.Context(), sched))
		}

		c.Next()
	}
}
