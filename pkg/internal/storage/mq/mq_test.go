package mq_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/storage/mq"
)

func newChannelClient(t *testing.T) *mq.Client {
	t.Helper()

	cfg := configs.Default().MQ
	cfg.Type = configs.MQTypeGoChannel

	client, err := mq.New(context.Background(), &cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// TestGoChannelConsumer 测试 Router 上注册的处理器能收到发布的消息与元数据.
func TestGoChannelConsumer(t *testing.T) {
	client := newChannelClient(t)

	got := make(chan *message.Message, 1)

	client.AddConsumer("test", "studio.test", func(msg *message.Message) error {
		got <- msg
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = client.Run(ctx) }()

	<-client.Running()

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"key":"a.png"}`))
	msg.Metadata.Set("event", "media.uploaded")
	require.NoError(t, client.Publish(ctx, "studio.test", msg))

	select {
	case m := <-got:
		assert.Equal(t, `{"key":"a.png"}`, string(m.Payload))
		assert.Equal(t, "media.uploaded", m.Metadata.Get("event"))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

// TestClientClose 测试关闭后的健康检查与重复关闭.
func TestClientClose(t *testing.T) {
	client := newChannelClient(t)

	require.NoError(t, client.HealthCheck(context.Background()))
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.HealthCheck(context.Background()), mq.ErrClosed)
}

func TestUnsupportedType(t *testing.T) {
	cfg := configs.Default().MQ
	cfg.Type = "kafka"

	_, err := mq.New(context.Background(), &cfg)
	require.Error(t, err)
	assert.Contains(t, mq.RegisteredTypes(), configs.MQTypeGoChannel)
}
