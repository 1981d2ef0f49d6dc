package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MailProvider 邮件中继实现.
type MailProvider string

const (
	MailProviderResend MailProvider = "resend" // Resend HTTP API
	MailProviderLog    MailProvider = "log"    // 只写日志，不真正发送，开发环境使用

	DefaultMailFrom          = "Feya Bloom Studio <onboarding@resend.dev>"
	DefaultMailTo            = "feya.bloom.design@gmail.com"
	DefaultMailSubjectPrefix = "Contact Form: "
	DefaultMailTimeout       = 15 * time.Second
)

// MailConfig 联系表单邮件中继配置.
type MailConfig struct {
	Provider MailProvider `mapstructure:"provider" rule:"oneof=resend log"`
	// APIKey Resend 接口密钥，也可以通过 RESEND_API_KEY 环境变量提供
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	From          string        `mapstructure:"from"           rule:"required"`
	To            []string      `mapstructure:"to"             rule:"min=1,dive,email"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// setDefaults 设置邮件配置的默认值.
func (c *MailConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mail.provider", MailProviderResend)
	v.SetDefault("mail.api_key", "")
	v.SetDefault("mail.base_url", "")
	v.SetDefault("mail.from", DefaultMailFrom)
	v.SetDefault("mail.to", []string{DefaultMailTo})
	v.SetDefault("mail.subject_prefix", DefaultMailSubjectPrefix)
	v.SetDefault("mail.timeout", DefaultMailTimeout)
}
