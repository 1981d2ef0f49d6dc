package queue_test

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/queue"
)

type capture struct {
	topic string
	msgs  []*message.Message
}

func (c *capture) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	c.topic = topic
	c.msgs = append(c.msgs, msgs...)

	return nil
}

// TestPublishRoundTrip 测试发布的消息可以按主题负载解码，并带有元数据.
func TestPublishRoundTrip(t *testing.T) {
	pub := &capture{}

	payload := queue.MediaMovedPayload{Bucket: "media", From: "a/x.png", To: "b/x.png"}
	err := queue.Publish(context.Background(), pub, queue.TopicMediaMoved, payload,
		queue.WithProducer("studio"), queue.WithTraceID("t-1"))
	require.NoError(t, err)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, queue.TopicMediaMoved, pub.topic)
	assert.Equal(t, "t-1", pub.msgs[0].Metadata.Get("trace_id"))

	env, err := queue.ParseWatermillMessage[queue.MediaMovedPayload](pub.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, payload, env.Payload)
	assert.Equal(t, queue.TopicMediaMoved, env.Header.Topic)
	assert.Equal(t, queue.PayloadVersionV1, env.Header.Version)
}

func TestAllTopics(t *testing.T) {
	topics := queue.AllTopics()
	assert.Contains(t, topics, queue.TopicContactSent)
	assert.Len(t, topics, len(queue.MediaTopics)+len(queue.ProjectTopics)+1)
}
