// Package mq 提供基于 Watermill 库的统一消息队列操作接口.
// 支持发布/订阅模式，并通过工厂模式抽象不同的 MQ 实现.
//
// 支持的 MQ 类型：
//   - gochannel（进程内，默认）
//   - NATS（支持 JetStream）
//   - Redis pub/sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, &configs.GetConfig().MQ)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.AddConsumer("cache-invalidate", "studio.media.uploaded", func(msg *message.Message) error {
//		fmt.Println(string(msg.Payload))
//		return nil
//	})
//	go client.Run(ctx)
//
//	msg := message.NewMessage(watermill.NewUUID(), []byte("hello world"))
//	err = client.Publish(ctx, "studio.media.uploaded", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/feyabloom/studio/pkg/configs"
	nlog "github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/metrics"
)

// ErrClosed 客户端已关闭.
var ErrClosed = errors.New("mq client closed")

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[t] = f
}

// RegisteredTypes 返回已注册的 MQ 类型.
func RegisteredTypes() []configs.MQType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// pinger 由支持健康检查的 Publisher 实现.
type pinger interface {
	Ping(ctx context.Context) error
}

// Client 封装 watermill Publisher、Subscriber 与 Router.
type Client struct {
	typ        configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
	raw        message.Publisher // 未装饰的 Publisher，用于健康检查

	mu     sync.Mutex
	closed bool
}

// New 按配置创建消息队列客户端.
func New(ctx context.Context, cfg *configs.MQConfig) (*Client, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	l := nlog.Component("mq")
	logger := newWatermillLogger(l)

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	client := &Client{typ: cfg.Type, raw: pub, router: router}

	if cfg.Common.EnableMetrics {
		builder := wmmetrics.NewPrometheusMetricsBuilder(metrics.GetRegistry(), "studio", "mq")
		builder.AddPrometheusRouterMetrics(router)

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}

		l.Info().Msg("MQ metrics enabled")
	}

	client.publisher = pub
	client.subscriber = sub

	l.Info().Str("type", string(cfg.Type)).Msg("MQ 客户端已初始化")

	return client, nil
}

// Type 返回 MQ 类型.
func (c *Client) Type() configs.MQType { return c.typ }

// Publish 便捷发布.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	for _, m := range msgs {
		m.SetContext(ctx)
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// AddConsumer 在 Router 上注册只消费不发布的处理器，需在 Run 之前调用.
func (c *Client) AddConsumer(name, topic string, handler message.NoPublishHandlerFunc) {
	c.router.AddNoPublisherHandler(name, topic, c.subscriber, handler)
}

// Run 运行 Router，阻塞直到 ctx 取消或 Router 关闭.
func (c *Client) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running 在 Router 启动完成后关闭.
func (c *Client) Running() chan struct{} {
	return c.router.Running()
}

// HealthCheck 检查连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return ErrClosed
	}

	if p, ok := c.raw.(pinger); ok {
		return p.Ping(ctx)
	}

	return nil
}

// Close 关闭资源.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	var errs []error

	// 先停止 router，确保所有 handler 停止运行
	if c.router != nil {
		errs = append(errs, c.router.Close())
	}

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}
