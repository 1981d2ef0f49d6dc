package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeGoChannel MQType = "gochannel" // 进程内 pub/sub，单实例部署默认使用
	MQTypeNATS      MQType = "nats"
	MQTypeRedis     MQType = "redis"

	DefaultMQURL         = "nats://localhost:4222"
	DefaultMQUser        = ""
	DefaultMQPassword    = ""
	DefaultMaxReconnects = 5               // 默认最大重连次数.
	DefaultReconnectWait = 5               // 默认重连等待时间（秒）.
	DefaultMQClientID    = "studio-app"    // 默认客户端ID
	DefaultMQStreamName  = "studio-stream" // 默认 JetStream 流名称

	DefaultMaxPingsOut  = 3     // 默认最大ping输出次数
	DefaultPingInterval = 20    // 默认ping间隔 (秒)
	DefaultBufferSize   = 32768 // 默认缓冲区大小 (32KB)

	DefaultGoChannelBuffer = 256 // 进程内通道缓冲
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type      MQType          `mapstructure:"type"      rule:"oneof=gochannel nats redis"`
	Common    MQCommonConfig  `mapstructure:"common"`
	GoChannel MQChannelConfig `mapstructure:"gochannel"`
	NATS      MQNATSConfig    `mapstructure:"nats"`
	Redis     MQRedisConfig   `mapstructure:"redis"`
}

// MQCommonConfig 通用MQ配置.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	MaxPingsOut   int    `mapstructure:"max_pings_out"  rule:"min=1,max=10"`
	PingInterval  int    `mapstructure:"ping_interval"  rule:"min=1,max=300"`
	BufferSize    int    `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// MQChannelConfig 进程内通道配置.
type MQChannelConfig struct {
	Buffer int64 `mapstructure:"buffer" rule:"min=0"`
	// Persistent 为 true 时，晚订阅者也能收到之前发布的消息（仅用于测试）
	Persistent bool `mapstructure:"persistent"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	JetStreamEnabled       bool     `mapstructure:"jetstream_enabled"`
	StreamName             string   `mapstructure:"stream_name"`
	SubjectPrefix          string   `mapstructure:"subject_prefix"`
	JetStreamAutoProvision bool     `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool     `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool     `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string   `mapstructure:"jetstream_durable_prefix"`
	JWT                    string   `mapstructure:"jwt"`
	NKey                   string   `mapstructure:"nkey"`
	ClusterURLs            []string `mapstructure:"cluster_urls"`
}

// MQRedisConfig Redis MQ 配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeGoChannel)

	// Common 默认值
	v.SetDefault("mq.common.url", DefaultMQURL)
	v.SetDefault("mq.common.user", DefaultMQUser)
	v.SetDefault("mq.common.password", DefaultMQPassword)
	v.SetDefault("mq.common.client_id", DefaultMQClientID)
	v.SetDefault("mq.common.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.common.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.common.max_pings_out", DefaultMaxPingsOut)
	v.SetDefault("mq.common.ping_interval", DefaultPingInterval)
	v.SetDefault("mq.common.buffer_size", DefaultBufferSize)
	v.SetDefault("mq.common.enable_metrics", false)

	// GoChannel 默认值
	v.SetDefault("mq.gochannel.buffer", DefaultGoChannelBuffer)
	v.SetDefault("mq.gochannel.persistent", false)

	// NATS 默认值
	v.SetDefault("mq.nats.jetstream_enabled", false)
	v.SetDefault("mq.nats.stream_name", DefaultMQStreamName)
	v.SetDefault("mq.nats.subject_prefix", "")
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", false)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "studio-durable")
	v.SetDefault("mq.nats.jwt", "")
	v.SetDefault("mq.nats.nkey", "")
	v.SetDefault("mq.nats.cluster_urls", []string{})

	// Redis 默认值
	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)
}
