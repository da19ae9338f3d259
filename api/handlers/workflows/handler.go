package workflows

import (
	"tradekeep/internal/auth"
	"tradekeep/internal/common"
	"tradekeep/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Handler 工作流处理器
type Handler struct {
	engine *workflow.Engine
}

// NewHandler 创建工作流处理器
func NewHandler(engine *workflow.Engine) *Handler {
	return &Handler{engine: engine}
}

// CreateTemplate 创建工作流模板
// POST /api/v1/workflows/templates
func (h *Handler) CreateTemplate(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	var req workflow.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	template, err := h.engine.CreateTemplate(c.Request.Context(), &req, userCtx.UserID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, TemplateResponse{Template: template})
}

// ListTemplates 模板列表
// GET /api/v1/workflows/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "无效的分页参数")
		return
	}

	templates, total, err := h.engine.ListTemplates(c.Request.Context(), page)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseList(c, templates, total, &page)
}

// GetTemplate 模板详情
// GET /api/v1/workflows/templates/:id
func (h *Handler) GetTemplate(c *gin.Context) {
	template, err := h.engine.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, TemplateResponse{Template: template})
}

// UpdateTemplateStages 整体替换模板阶段
// PUT /api/v1/workflows/templates/:id/stages
func (h *Handler) UpdateTemplateStages(c *gin.Context) {
	var req UpdateStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	template, err := h.engine.UpdateTemplateStages(c.Request.Context(), c.Param("id"), req.Stages)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, TemplateResponse{Template: template})
}

// Start 启动工作流实例
// POST /api/v1/workflows/start
func (h *Handler) Start(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	var req workflow.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	instance, err := h.engine.Start(c.Request.Context(), &req, userCtx.UserID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, InstanceResponse{Instance: instance})
}

// Approve 提交审批决定
// POST /api/v1/workflows/approve/:instanceId
func (h *Handler) Approve(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	var req workflow.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	result, err := h.engine.RecordDecision(c.Request.Context(), c.Param("instanceId"), userCtx.UserID, userCtx.Role, &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, result)
}

// ListPending 当前用户的待办列表
// GET /api/v1/workflows/pending
func (h *Handler) ListPending(c *gin.Context) {
	userCtx, ok := auth.GetUserContext(c)
	if !ok {
		common.ResponseUnauthorized(c, "")
		return
	}

	items, err := h.engine.ListPending(c.Request.Context(), userCtx.UserID, userCtx.Role)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, PendingResponse{Items: items, Total: len(items)})
}

// GetInstance 实例详情（含审批记录）
// GET /api/v1/workflows/instances/:id
func (h *Handler) GetInstance(c *gin.Context) {
	instance, err := h.engine.GetInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	approvals, err := h.engine.ListApprovals(c.Request.Context(), instance.ID)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseSuccess(c, InstanceResponse{Instance: instance, Approvals: approvals})
}
