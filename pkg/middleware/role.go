package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/configs"
	"github.com/feyabloom/studio/pkg/internal/service"
	nlog "github.com/feyabloom/studio/pkg/log"
)

// AdminKey gin.Context 中标记管理员的键.
const AdminKey = "is_admin"

// RequireAdmin 要求当前用户拥有管理员角色行 (user_id, admin_role)，否则返回 401/403.
// 认证关闭时（本地开发）直接放行.
// 依赖 StorageMiddleware 已注入存储管理器.
func RequireAdmin(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled {
			c.Set(AdminKey, true)
			c.Next()

			return
		}

		user := GetUser(c)
		if user == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ok, err := service.NewAuthService(c.Request.Context()).IsAdmin(c.Request.Context(), user)
		if err != nil {
			nlog.Logger().Error().Err(err).Str("user", user).Msg("admin role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check role"})

			return
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin role required"})
			return
		}

		c.Set(AdminKey, true)
		c.Next()
	}
}

// IsAdmin 当前请求是否已通过管理员校验.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(AdminKey)
}
