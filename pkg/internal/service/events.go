package service

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/feyabloom/studio/pkg/configs"
	mqc "github.com/feyabloom/studio/pkg/internal/storage/mq"
	nlog "github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/queue"
)

// producer 事件头中的生产者名称.
const producer = "studio"

// events 按 EventsConfig 开关发布领域事件，发布失败只记录日志.
type events struct {
	pub queue.Publisher
	cfg configs.EventsConfig
}

func newEvents(mq *mqc.Client, cfg configs.EventsConfig) *events {
	e := &events{cfg: cfg}

	// 避免把 nil 指针装进接口
	if mq != nil && cfg.Enabled {
		e.pub = mq
	}

	return e
}

// emit 在 enabled 为 true 时发布事件.
func emit[T any](ctx context.Context, e *events, enabled bool, topic string, payload T) {
	if e == nil || e.pub == nil || !enabled {
		return
	}

	opts := []func(*queue.EventHeader){queue.WithProducer(producer)}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	if err := queue.Publish(ctx, e.pub, topic, payload, opts...); err != nil {
		nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}
