package workflows

import "tradekeep/internal/workflow"

// TemplateResponse 模板详情响应
type TemplateResponse struct {
	Template *workflow.Template `json:"template"`
}

// InstanceResponse 实例详情响应
type InstanceResponse struct {
	Instance  *workflow.Instance        `json:"instance"`
	Approvals []workflow.ApprovalRecord `json:"approvals,omitempty"`
}

// PendingResponse 待办列表响应
type PendingResponse struct {
	Items []workflow.PendingItem `json:"items"`
	Total int                    `json:"total"`
}

// UpdateStagesRequest 整体替换阶段定义请求
type UpdateStagesRequest struct {
	Stages []workflow.StageInput `json:"stages" binding:"required"`
}
