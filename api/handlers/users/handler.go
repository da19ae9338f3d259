package users

import (
	"tradekeep/internal/common"
	"tradekeep/internal/identity"

	"github.com/gin-gonic/gin"
)

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,max=100"`
	Role  string `json:"role" binding:"required"`
}

// Handler 用户管理处理器（仅管理员）
type Handler struct {
	identity *identity.Service
}

// NewHandler 创建用户处理器
func NewHandler(identitySvc *identity.Service) *Handler {
	return &Handler{identity: identitySvc}
}

// Create 创建用户
// POST /api/v1/users
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	if req.Role != identity.RoleAdmin && req.Role != identity.RoleEditor && req.Role != identity.RoleViewer {
		common.ResponseBadRequest(c, "未知的角色: "+req.Role)
		return
	}

	user := &identity.User{
		Email:  req.Email,
		Name:   req.Name,
		Role:   req.Role,
		Active: true,
	}
	if err := h.identity.CreateUser(c.Request.Context(), user); err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseCreated(c, user)
}

// List 用户列表
// GET /api/v1/users
func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, "无效的分页参数")
		return
	}

	users, total, err := h.identity.ListUsers(c.Request.Context(), page)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}
	common.ResponseList(c, users, total, &page)
}
