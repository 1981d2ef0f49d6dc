package configs

import "github.com/spf13/viper"

const (
	// 默认速率限制配置.
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 50.0
	DefaultRateLimitBurst   = 100
	DefaultRateLimitKey     = "ip"
	// 联系表单单独限流，防止被滥用刷邮件.
	DefaultContactRPS   = 0.2
	DefaultContactBurst = 3
)

// RateLimitConfig 速率限制配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"           rule:"min=0"` // 每秒允许的请求数
	Burst   int     `mapstructure:"burst"         rule:"min=0"` // 突发容量
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、user（按登录用户，未登录回退到 IP）、header:Header-Name（按请求头）
	Key          string  `mapstructure:"key"`
	ContactRPS   float64 `mapstructure:"contact_rps"   rule:"min=0"`
	ContactBurst int     `mapstructure:"contact_burst" rule:"min=0"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.contact_rps", DefaultContactRPS)
	v.SetDefault("rate_limit.contact_burst", DefaultContactBurst)
}
