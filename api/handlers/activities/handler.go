package activities

import (
	"tradekeep/internal/activity"
	"tradekeep/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler 操作流水处理器
type Handler struct {
	activities *activity.Service
}

// NewHandler 创建操作流水处理器
func NewHandler(activities *activity.Service) *Handler {
	return &Handler{activities: activities}
}

// List 操作流水列表
// GET /api/v1/activities?entityType=content&entityId=xxx
func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "无效的分页参数")
		return
	}

	entityType := c.Query("entityType")
	entityID := c.Query("entityId")

	var (
		logs  []activity.Log
		total int64
		err   error
	)
	if entityType != "" && entityID != "" {
		logs, total, err = h.activities.ListByEntity(c.Request.Context(), entityType, entityID, page)
	} else {
		logs, total, err = h.activities.ListRecent(c.Request.Context(), page)
	}
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseList(c, logs, total, &page)
}
