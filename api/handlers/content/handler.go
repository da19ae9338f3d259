package content

import (
	"tradekeep/internal/auth"
	"tradekeep/internal/common"
	contentsvc "tradekeep/internal/content"
	"tradekeep/internal/publishing"

	"github.com/gin-gonic/gin"
)

// Handler 内容与发布处理器
type Handler struct {
	content      *contentsvc.Service
	orchestrator *publishing.Orchestrator
}

// NewHandler 创建内容处理器
func NewHandler(content *contentsvc.Service, orchestrator *publishing.Orchestrator) *Handler {
	return &Handler{
		content:      content,
		orchestrator: orchestrator,
	}
}

// Create 创建内容
// POST /api/v1/content
func (h *Handler) Create(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	var req contentsvc.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	item, err := h.content.Create(c.Request.Context(), &req, userCtx.UserID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, item)
}

// List 内容列表
// GET /api/v1/content
func (h *Handler) List(c *gin.Context) {
	var req contentsvc.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ResponseBadRequest(c, "无效的查询参数")
		return
	}

	items, total, err := h.content.List(c.Request.Context(), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseList(c, items, total, &req.PaginationRequest)
}

// Get 内容详情
// GET /api/v1/content/:id
func (h *Handler) Get(c *gin.Context) {
	item, err := h.content.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// Update 更新内容
// PUT /api/v1/content/:id
func (h *Handler) Update(c *gin.Context) {
	var req contentsvc.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	item, err := h.content.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// Publish 立即发布内容
// POST /api/v1/content/:id/publish
func (h *Handler) Publish(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	// 请求体可省略：全部使用默认值
	var req PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
			return
		}
	}

	result, err := h.orchestrator.Publish(c.Request.Context(), c.Param("id"), req.Platforms, formatOptions(req.SuppressHashtags), userCtx.UserID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, result)
}

// Schedule 创建定时发布计划
// POST /api/v1/content/:id/schedule
func (h *Handler) Schedule(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	schedule, err := h.orchestrator.Schedule(c.Request.Context(), c.Param("id"), req.Platforms, req.ScheduledAt, formatOptions(req.SuppressHashtags), userCtx.UserID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, ScheduleResponse{Schedule: schedule})
}

// CancelSchedule 取消定时发布计划
// DELETE /api/v1/schedules/:scheduleId
func (h *Handler) CancelSchedule(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	if err := h.orchestrator.CancelSchedule(c.Request.Context(), c.Param("scheduleId"), userCtx.UserID); err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"canceled": true})
}

// ListRecords 内容的平台发布记录
// GET /api/v1/content/:id/records
func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.content.ListPublishRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, RecordsResponse{Records: records, Total: len(records)})
}
