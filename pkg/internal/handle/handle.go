// Package handle 提供 HTTP 请求处理器：绑定参数、调用服务层、把错误映射为状态码.
package handle

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/internal/mail"
	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/storage/object"
	"github.com/feyabloom/studio/pkg/log"
	"github.com/feyabloom/studio/pkg/rule"
)

// DefaultHandler 未实现的路由.
func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "Not Implemented"})
}

// statusOf 把服务层错误映射为 HTTP 状态码.
func statusOf(err error) int {
	switch {
	case service.IsValidation(err),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrUnknownBucket),
		errors.Is(err, service.ErrSameLocation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, object.ErrNotFound), errors.Is(err, service.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, object.ErrObjectExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, mail.ErrRelayUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError 记录日志并以 {"error": msg} 响应.
func respondError(c *gin.Context, op string, err error) {
	status := statusOf(err)

	l := log.Logger()
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("op", op).Msg("service call failed")
	} else {
		l.Warn().Err(err).Str("op", op).Int("status", status).Msg("request rejected")
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindError 绑定失败时返回 400，优先使用 rule 的可读信息.
func bindError(c *gin.Context, op string, err error) {
	msg := rule.First(err)
	if msg == "" {
		msg = err.Error()
	}

	log.Logger().Warn().Err(err).Str("op", op).Msg("invalid request")
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// handleOperation 绑定请求体（json / form / query），调用服务并返回 200.
func handleOperation[Req, Resp any](c *gin.Context, op string, req *Req, call func(ctx context.Context, req *Req) (Resp, error)) {
	if err := c.ShouldBind(req); err != nil {
		bindError(c, op, err)
		return
	}

	resp, err := call(c.Request.Context(), req)
	if err != nil {
		respondError(c, op, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
