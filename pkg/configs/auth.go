package configs

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AuthMode 认证方式.
type AuthMode string

const (
	AuthModeJWT    AuthMode = "jwt"    // Authorization: Bearer <token>
	AuthModeHeader AuthMode = "header" // oauth2-proxy 注入的 X-Auth-Request-* 请求头

	DefaultAuthAdminRole    = "admin"
	DefaultAuthTokenTTL     = 24 * time.Hour
	DefaultAuthRoleCacheTTL = 60 * time.Second
)

// weakJWTSecrets 常见的占位密钥，开启 jwt 认证时拒绝使用.
var weakJWTSecrets = []string{"change-me", "changeme", "secret", "studio"}

// AuthConfig 控制统一身份认证与管理员权限校验.
type AuthConfig struct {
	Enabled       bool          `mapstructure:"enabled"`         // 开启认证校验
	Mode          AuthMode      `mapstructure:"mode"             rule:"oneof=jwt header"`
	JWTSecret     string        `mapstructure:"jwt_secret"`      // HS256 签名密钥
	Issuer        string        `mapstructure:"issuer"`          // 签发者，校验时必须一致
	TokenTTL      time.Duration `mapstructure:"token_ttl"`       // auth token 命令签发的有效期
	SkipPaths     []string      `mapstructure:"skip_paths"`      // 跳过认证的路径前缀（如 /metrics、/api/v1/health）
	DevAllowQuery bool          `mapstructure:"dev_allow_query"` // 开发模式允许用 ?user= 便于本地调试
	AdminRole     string        `mapstructure:"admin_role"       rule:"required"`
	RoleCacheTTL  time.Duration `mapstructure:"role_cache_ttl"`  // 角色查询结果在 KV 中的缓存时间，0 表示不缓存
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.mode", AuthModeJWT)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "studio")
	v.SetDefault("auth.token_ttl", DefaultAuthTokenTTL)
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.admin_role", DefaultAuthAdminRole)
	v.SetDefault("auth.role_cache_ttl", DefaultAuthRoleCacheTTL)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/api/v1/gallery",
		"/api/v1/contact",
		"/swagger",
	})
}

// validate 开启 jwt 认证时必须配置非占位的签名密钥.
func (c *AuthConfig) validate() error {
	if !c.Enabled || c.Mode != AuthModeJWT {
		return nil
	}

	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required when auth.mode is jwt", ErrInvalidConfig)
	}

	if slices.Contains(weakJWTSecrets, strings.ToLower(secret)) {
		return fmt.Errorf("%w: auth.jwt_secret uses a placeholder value", ErrInvalidConfig)
	}

	return nil
}
