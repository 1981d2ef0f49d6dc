package configs

// redactedValue 替换密钥后的占位文本.
const redactedValue = "******"

// Redacted 返回隐藏了密码与密钥的配置副本，用于打印.
func (c AppConfig) Redacted() AppConfig {
	out := c

	for _, s := range []*string{
		&out.DB.Password,
		&out.Storage.SecretAccessKey,
		&out.KV.Redis.Password,
		&out.KV.NATS.Password,
		&out.MQ.Common.Password,
		&out.MQ.NATS.JWT,
		&out.MQ.NATS.NKey,
		&out.MQ.Redis.Password,
		&out.Auth.JWTSecret,
		&out.Mail.APIKey,
	} {
		if *s != "" {
			*s = redactedValue
		}
	}

	return out
}
