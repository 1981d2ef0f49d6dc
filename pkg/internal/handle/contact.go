package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/types"
)

// SendContact 校验联系表单并通过邮件中继转发.
//
//	@Summary		发送联系表单
//	@Description	校验失败返回 400，中继失败返回 500 与上游错误信息
//	@Tags			联系
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.ContactRequest	true	"表单"
//	@Success		200		{object}	types.ContactResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/api/v1/contact [post]
func SendContact(c *gin.Context) {
	var req types.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "contact.send", err)
		return
	}

	ctx := c.Request.Context()

	resp, err := service.NewContactService(ctx).Send(ctx, &req)
	if err != nil {
		respondError(c, "contact.send", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ContactPreflight 响应 CORS 预检请求，头部由 middleware.ContactCORS 写入.
func ContactPreflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
