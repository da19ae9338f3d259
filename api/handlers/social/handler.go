package social

import (
	"tradekeep/internal/auth"
	"tradekeep/internal/common"
	"tradekeep/internal/publishing"

	"github.com/gin-gonic/gin"
)

// Handler 社交平台处理器
type Handler struct {
	orchestrator *publishing.Orchestrator
}

// NewHandler 创建社交平台处理器
func NewHandler(orchestrator *publishing.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// Connections 全部平台的账号连接状态
// GET /api/v1/social/connections
func (h *Handler) Connections(c *gin.Context) {
	statuses := h.orchestrator.ConnectionStatuses(c.Request.Context())
	common.ResponseSuccess(c, gin.H{
		"connections": statuses,
		"total":       len(statuses),
	})
}

// DeletePost 删除远端已发布内容
// DELETE /api/v1/social/:platform/posts/:postId
func (h *Handler) DeletePost(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	err := h.orchestrator.DeleteRemotePost(c.Request.Context(), c.Param("platform"), c.Param("postId"), userCtx.UserID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"deleted": true})
}
