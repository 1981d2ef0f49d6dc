package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedacted 测试打印用的配置副本隐藏了密钥，且不修改原配置.
func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "s3cret"
	cfg.Mail.APIKey = "re_123"
	cfg.DB.Password = ""

	out := cfg.Redacted()

	assert.Equal(t, redactedValue, out.Auth.JWTSecret)
	assert.Equal(t, redactedValue, out.Mail.APIKey)
	assert.Equal(t, redactedValue, out.Storage.SecretAccessKey)
	assert.Empty(t, out.DB.Password)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, cfg.Storage.Buckets, out.Storage.Buckets)
}

// TestValidateUnknownBucket 测试默认存储桶与上传策略必须引用已配置的存储桶.
func TestValidateUnknownBucket(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "a-long-random-signing-key"
	assert.NoError(t, Validate(&cfg))

	cfg.Storage.DefaultBucket = "missing"
	assert.ErrorIs(t, Validate(&cfg), ErrInvalidConfig)
}

// TestValidateJWTSecret 测试开启 jwt 认证时拒绝空密钥与占位密钥.
func TestValidateJWTSecret(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, AuthModeJWT, cfg.Auth.Mode)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.ErrorIs(t, Validate(&cfg), ErrInvalidConfig)

	for _, weak := range []string{"change-me", " CHANGE-ME ", "secret", "   "} {
		cfg.Auth.JWTSecret = weak
		assert.ErrorIs(t, Validate(&cfg), ErrInvalidConfig, weak)
	}

	cfg.Auth.JWTSecret = "a-long-random-signing-key"
	assert.NoError(t, Validate(&cfg))

	cfg.Auth.JWTSecret = ""
	cfg.Auth.Mode = AuthModeHeader
	assert.NoError(t, Validate(&cfg))

	cfg.Auth.Mode = AuthModeJWT
	cfg.Auth.Enabled = false
	assert.NoError(t, Validate(&cfg))
}
