package notifications

import (
	"tradekeep/internal/auth"
	"tradekeep/internal/common"
	"tradekeep/internal/notification"

	"github.com/gin-gonic/gin"
)

// Handler 站内通知处理器
type Handler struct {
	notifications *notification.Service
}

// NewHandler 创建通知处理器
func NewHandler(notifications *notification.Service) *Handler {
	return &Handler{notifications: notifications}
}

// List 当前用户的通知列表
// GET /api/v1/notifications?unread=true
func (h *Handler) List(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "无效的分页参数")
		return
	}
	unreadOnly := c.Query("unread") == "true"

	rows, total, err := h.notifications.ListForUser(c.Request.Context(), userCtx.UserID, unreadOnly, page)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseList(c, rows, total, &page)
}

// MarkRead 标记通知为已读
// POST /api/v1/notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userCtx.UserID, c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"read": true})
}
