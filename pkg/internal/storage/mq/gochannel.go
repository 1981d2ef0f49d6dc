package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/feyabloom/studio/pkg/configs"
)

// init 注册进程内工厂.
func init() {
	RegisterFactory(configs.MQTypeGoChannel, goChannelFactory)
}

// goChannelFactory 创建进程内 pub/sub，Publisher 与 Subscriber 为同一实例.
func goChannelFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.GoChannel.Buffer,
		Persistent:          cfg.GoChannel.Persistent,
	}, logger)

	return ps, ps, nil
}
