package api

import (
	"tradekeep/internal/auth"
	"tradekeep/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 注册全部 API 路由
func RegisterRoutes(router *gin.Engine, container *AppContainer, handlers *Handlers) {
	// 系统端点（公开）
	router.GET("/health", HealthCheck())
	router.GET("/ready", ReadinessCheck(container.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 版本化 API 组（需要认证）
	apiV1 := router.Group("/api/v1")
	apiV1.Use(auth.AuthMiddleware(container.JWTService))
	registerAPIRoutes(apiV1, handlers)
}

// registerAPIRoutes 注册需要认证的 API 路由
func registerAPIRoutes(apiGroup *gin.RouterGroup, h *Handlers) {
	// 工作流
	workflowGroup := apiGroup.Group("/workflows")
	{
		workflowGroup.POST("/templates", h.Workflows.CreateTemplate)
		workflowGroup.GET("/templates", h.Workflows.ListTemplates)
		workflowGroup.GET("/templates/:id", h.Workflows.GetTemplate)
		workflowGroup.PUT("/templates/:id/stages", h.Workflows.UpdateTemplateStages)
		workflowGroup.POST("/start", h.Workflows.Start)
		workflowGroup.POST("/approve/:instanceId", h.Workflows.Approve)
		workflowGroup.GET("/pending", h.Workflows.ListPending)
		workflowGroup.GET("/instances/:id", h.Workflows.GetInstance)
	}

	// 内容与发布
	contentGroup := apiGroup.Group("/content")
	{
		contentGroup.POST("", h.Content.Create)
		contentGroup.GET("", h.Content.List)
		contentGroup.GET("/:id", h.Content.Get)
		contentGroup.PUT("/:id", h.Content.Update)
		contentGroup.POST("/:id/publish", h.Content.Publish)
		contentGroup.POST("/:id/schedule", h.Content.Schedule)
		contentGroup.GET("/:id/records", h.Content.ListRecords)
	}

	// 定时发布计划
	apiGroup.DELETE("/schedules/:scheduleId", h.Content.CancelSchedule)

	// 社交平台
	socialGroup := apiGroup.Group("/social")
	{
		socialGroup.GET("/connections", h.Social.Connections)
		socialGroup.DELETE("/:platform/posts/:postId", h.Social.DeletePost)
	}

	// 站内通知
	notificationGroup := apiGroup.Group("/notifications")
	{
		notificationGroup.GET("", h.Notifications.List)
		notificationGroup.POST("/:id/read", h.Notifications.MarkRead)
	}

	// 操作流水
	apiGroup.GET("/activities", h.Activities.List)

	// 用户管理（仅管理员）
	userGroup := apiGroup.Group("/users", auth.RequireRole(identity.RoleAdmin))
	{
		userGroup.POST("", h.Users.Create)
		userGroup.GET("", h.Users.List)
	}
}
