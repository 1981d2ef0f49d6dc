// Package middleware 提供 HTTP 中间件：认证与管理员校验、CORS、限流、熔断、响应缓存、日志、监控与追踪.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContactAllowHeaders 联系表单允许的请求头，与浏览器端 SDK 发送的一致.
const ContactAllowHeaders = "authorization, x-client-info, apikey, content-type"

// ContactCORS 为联系表单写入宽松的 CORS 头，OPTIONS 预检直接返回.
func ContactCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", ContactAllowHeaders)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
