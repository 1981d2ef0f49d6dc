// Package context 拓展上下文功能，将日志、存储等集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/feyabloom/studio/pkg/internal/mail"
	"github.com/feyabloom/studio/pkg/internal/storage"
	dbc "github.com/feyabloom/studio/pkg/internal/storage/db"
	kvc "github.com/feyabloom/studio/pkg/internal/storage/kv"
	mqc "github.com/feyabloom/studio/pkg/internal/storage/mq"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/scheduler"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
	UserKey           ContextKey = "user"
	MailRelayKey      ContextKey = "mailRelay"
	SchedulerKey      ContextKey = "scheduler"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetObjectStore 从 context 中获取对象存储.
func GetObjectStore(ctx context.Context) object.Store {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetObjectStore()
	}

	return nil
}

// GetDBClient 从 context 中获取 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 从 context 中获取 MQ 客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 从 context 中获取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// WithMailRelay 将邮件中继存储到 context 中.
func WithMailRelay(ctx context.Context, relay mail.Relay) context.Context {
	return context.WithValue(ctx, MailRelayKey, relay)
}

// GetMailRelay 从 context 中获取邮件中继.
func GetMailRelay(ctx context.Context) mail.Relay {
	if r, ok := ctx.Value(MailRelayKey).(mail.Relay); ok {
		return r
	}

	return nil
}

// WithScheduler 将任务调度器存储到 context 中.
func WithScheduler(ctx context.Context, sched *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, SchedulerKey, sched)
}

// GetScheduler 从 context 中获取任务调度器，未启动时为 nil.
func GetScheduler(ctx context.Context) *scheduler.Scheduler {
	if s, ok := ctx.Value(SchedulerKey).(*scheduler.Scheduler); ok {
		return s
	}

	return nil
}

// WithUser 将当前用户 ID 存储到 context 中.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserKey, userID)
}

// GetUser 从 context 中获取当前用户 ID，未登录时为空.
func GetUser(ctx context.Context) string {
	if u, ok := ctx.Value(UserKey).(string); ok {
		return u
	}

	return ""
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
