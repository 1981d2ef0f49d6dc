package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/feyabloom/studio/pkg/configs"
)

const (
	// DefaultChannelBufferSize 默认通道缓冲区大小.
	DefaultChannelBufferSize = 100
)

// envelope 在 Redis 频道中传输的消息，保留 UUID 与元数据.
type envelope struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

// RedisPublisher Redis Publisher 实现.
type RedisPublisher struct {
	client *redis.Client
}

// RedisSubscriber Redis Subscriber 实现.
type RedisSubscriber struct {
	client  *redis.Client
	logger  watermill.LoggerAdapter
	subs    []*redis.PubSub
	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

// init 注册 Redis 工厂.
func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 创建 Redis Publisher & Subscriber.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Publisher 与 Subscriber 各自持有连接，分别关闭
	pubClient := redis.NewClient(opts)

	if err := pubClient.Ping(ctx).Err(); err != nil {
		_ = pubClient.Close()
		return nil, nil, err
	}

	pub := &RedisPublisher{client: pubClient}
	sub := &RedisSubscriber{
		client:  redis.NewClient(opts),
		logger:  logger,
		closeCh: make(chan struct{}),
	}

	return pub, sub, nil
}

// Publish 实现 Publisher 接口.
func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		data, err := sonic.Marshal(envelope{UUID: msg.UUID, Metadata: msg.Metadata, Payload: msg.Payload})
		if err != nil {
			return fmt.Errorf("marshal message %s: %w", msg.UUID, err)
		}

		if err := p.client.Publish(msg.Context(), topic, data).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Ping 检查 Redis 连接.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close 实现 Publisher 接口.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Subscribe 实现 Subscriber 接口.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	ps := s.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	s.subs = append(s.subs, ps)

	ch := make(chan *message.Message, DefaultChannelBufferSize)

	go s.consume(ctx, ps, ch)

	return ch, nil
}

// consume 把 Redis 消息转换为 Watermill 消息，逐条等待 Ack/Nack.
func (s *RedisSubscriber) consume(ctx context.Context, ps *redis.PubSub, ch chan<- *message.Message) {
	defer close(ch)

	in := ps.Channel()

	for {
		select {
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		case raw, ok := <-in:
			if !ok {
				return
			}

			var env envelope
			if err := sonic.UnmarshalString(raw.Payload, &env); err != nil {
				s.logger.Error("drop malformed message", err, watermill.LogFields{"topic": raw.Channel})
				continue
			}

			msg := message.NewMessage(env.UUID, env.Payload)
			for k, v := range env.Metadata {
				msg.Metadata.Set(k, v)
			}

			msg.SetContext(ctx)

			select {
			case ch <- msg:
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			}

			// Redis pub/sub 不支持重投，Nack 只记录日志
			select {
			case <-msg.Acked():
			case <-msg.Nacked():
				s.logger.Info("message nacked", watermill.LogFields{"uuid": msg.UUID, "topic": raw.Channel})
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close 实现 Subscriber 接口.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.closeCh)

	for _, ps := range s.subs {
		if err := ps.Close(); err != nil {
			s.logger.Error("close redis pubsub", err, nil)
		}
	}

	return s.client.Close()
}
