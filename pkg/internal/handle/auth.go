package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/internal/service"
	"github.com/feyabloom/studio/pkg/internal/types"
	"github.com/feyabloom/studio/pkg/middleware"
)

// Me 返回当前用户以及是否为管理员.
//
//	@Summary	当前用户
//	@Tags		认证
//	@Produce	json
//	@Success	200	{object}	types.MeResponse
//	@Failure	401	{object}	map[string]string
//	@Router		/api/v1/auth/me [get]
func Me(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == "" {
		respondError(c, "auth.me", service.ErrUnauthenticated)
		return
	}

	ctx := c.Request.Context()

	admin, err := service.NewAuthService(ctx).IsAdmin(ctx, user)
	if err != nil {
		respondError(c, "auth.me", err)
		return
	}

	c.JSON(http.StatusOK, types.MeResponse{UserID: user, IsAdmin: admin})
}
