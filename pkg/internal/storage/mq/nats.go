// NATS 工厂：重连、多种认证方式（JWT、NKey、用户名/密码）与可选的 JetStream 持久化.
package mq

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/feyabloom/studio/pkg/configs"
)

const (
	DefaultDrainTimeout   = 30 * time.Second
	DefaultFlusherTimeout = 10 * time.Second
)

// init 注册 NATS 工厂.
func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// buildNatsOptions 构建 NATS 连接选项.
func buildNatsOptions(cfg *configs.MQConfig) []nc.Option {
	common := cfg.Common

	opts := []nc.Option{
		nc.Name(common.ClientID),
		nc.MaxReconnects(common.MaxReconnects),
		nc.ReconnectWait(time.Duration(common.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(common.PingInterval) * time.Second),
		nc.MaxPingsOutstanding(common.MaxPingsOut),
		nc.ReconnectBufSize(common.BufferSize),
		nc.DrainTimeout(DefaultDrainTimeout),
		nc.FlusherTimeout(DefaultFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	// 添加认证选项
	opts = appendAuthOptions(opts, cfg)

	return opts
}

// appendAuthOptions 添加认证选项.
func appendAuthOptions(opts []nc.Option, cfg *configs.MQConfig) []nc.Option {
	switch {
	case cfg.NATS.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(cfg.NATS.JWT, cfg.NATS.NKey))
	case cfg.NATS.NKey != "":
		opts = append(opts, nc.Nkey(cfg.NATS.NKey, nil))
	case cfg.Common.User != "":
		opts = append(opts, nc.UserInfo(cfg.Common.User, cfg.Common.Password))
	}

	return opts
}

// buildJetStreamConfig 构建 JetStream 配置.
func buildJetStreamConfig(cfg *configs.MQConfig, logger watermill.LoggerAdapter) nats.JetStreamConfig {
	n := cfg.NATS

	jsCfg := nats.JetStreamConfig{
		Disabled: !n.JetStreamEnabled,
	}

	if n.JetStreamEnabled {
		jsCfg.AutoProvision = n.JetStreamAutoProvision
		jsCfg.TrackMsgId = n.JetStreamTrackMsgID
		jsCfg.AckAsync = n.JetStreamAckAsync
		jsCfg.DurablePrefix = n.JetStreamDurablePrefix

		logger.Info("JetStream 配置信息", watermill.LogFields{
			"auto_provision": n.JetStreamAutoProvision,
			"track_msg_id":   n.JetStreamTrackMsgID,
			"ack_async":      n.JetStreamAckAsync,
			"durable_prefix": n.JetStreamDurablePrefix,
			"stream_name":    n.StreamName,
			"subject_prefix": n.SubjectPrefix,
		})
	}

	return jsCfg
}

// buildURL 构建连接 URL.
func buildURL(cfg *configs.MQConfig) string {
	if len(cfg.NATS.ClusterURLs) > 0 {
		return strings.Join(cfg.NATS.ClusterURLs, ",")
	}

	return cfg.Common.URL
}

// natsFactory 创建 NATS Publisher & Subscriber.
func natsFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := buildNatsOptions(cfg)
	jsCfg := buildJetStreamConfig(cfg, logger)
	marshaler := &nats.JSONMarshaler{}

	// 创建 Publisher
	pub, err := createPublisher(opts, jsCfg, marshaler, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	// 创建 Subscriber
	sub, err := createSubscriber(opts, jsCfg, marshaler, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return pub, sub, nil
}

// createPublisher 创建 Publisher.
func createPublisher(
	opts []nc.Option,
	jsCfg nats.JetStreamConfig,
	marshaler *nats.JSONMarshaler,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (message.Publisher, error) {
	pubCfg := nats.PublisherConfig{
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
		URL:         buildURL(cfg),
	}

	return nats.NewPublisher(pubCfg, logger)
}

// createSubscriber 创建 Subscriber.
func createSubscriber(
	opts []nc.Option,
	jsCfg nats.JetStreamConfig,
	marshaler *nats.JSONMarshaler,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (message.Subscriber, error) {
	subCfg := nats.SubscriberConfig{
		NatsOptions: opts,
		JetStream:   jsCfg,
		Unmarshaler: marshaler,
		URL:         buildURL(cfg),
	}

	if cfg.NATS.SubjectPrefix != "" {
		subCfg.QueueGroupPrefix = cfg.NATS.SubjectPrefix
	}

	return nats.NewSubscriber(subCfg, logger)
}
