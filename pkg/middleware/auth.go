package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/configs"
	ctxPkg "github.com/feyabloom/studio/pkg/context"
	"github.com/feyabloom/studio/pkg/internal/service"
	nlog "github.com/feyabloom/studio/pkg/log"
)

// UserKey gin.Context 中保存当前用户 ID 的键.
const UserKey = "user_id"

// AuthMiddleware 解析当前用户并写入 request context.
//   - jwt 模式读取 Authorization: Bearer <token>
//   - header 模式读取 oauth2-proxy 注入的 X-Auth-Request-User / X-Auth-Request-Email / X-Forwarded-Email
//   - skip_paths 下的路径不要求登录，但仍会尽量解析用户
//   - 开发模式可允许 ?user= 兜底（由 configs.auth.dev_allow_query 控制）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled {
			c.Next()
			return
		}

		user, err := resolveUser(c, conf)
		if user != "" {
			c.Set(UserKey, user)
			c.Request = c.Request.WithContext(ctxPkg.WithUser(c.Request.Context(), user))
		}

		if isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		if user == "" {
			if err != nil {
				nlog.Logger().Debug().Err(err).Str("path", c.Request.URL.Path).Msg("reject token")
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		c.Next()
	}
}

func resolveUser(c *gin.Context, conf configs.AuthConfig) (string, error) {
	var user string

	switch conf.Mode {
	case configs.AuthModeHeader:
		for _, h := range []string{"X-Auth-Request-User", "X-Auth-Request-Email", "X-Forwarded-Email"} {
			if user = strings.TrimSpace(c.GetHeader(h)); user != "" {
				break
			}
		}
	default:
		token, ok := bearer(c.GetHeader("Authorization"))
		if ok {
			u, err := service.ParseToken(conf, token)
			if err != nil {
				return "", err
			}

			user = u
		}
	}

	if user == "" && conf.DevAllowQuery {
		user = strings.TrimSpace(c.Query("user"))
	}

	return user, nil
}

func bearer(header string) (string, bool) {
	const prefix = "bearer "

	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])

	return token, token != ""
}

// GetUser 返回当前用户 ID，未登录时为空.
func GetUser(c *gin.Context) string {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(string); ok {
			return u
		}
	}

	return ctxPkg.GetUser(c.Request.Context())
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
