package workflow

import (
	"time"

	"tradekeep/internal/common"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================================
// 状态与类型定义
// ============================================================================

// TemplateType 模板类型
type TemplateType string

const (
	TemplateContentApproval TemplateType = "content_approval" // 内容审批流
	TemplateTaskSequence    TemplateType = "task_sequence"    // 任务序列
	TemplateCustom          TemplateType = "custom"           // 自定义
)

// StageType 阶段类型
type StageType string

const (
	StageApproval     StageType = "approval"     // 需要审批决定
	StageTask         StageType = "task"         // 需要任务完成确认
	StageNotification StageType = "notification" // 仅通知，自动推进
	StageAuto         StageType = "auto"         // 按条件自动推进
)

// InstanceStatus 实例状态
// completed 与 rejected 为终态，之后任何审批都会被拒绝
type InstanceStatus string

const (
	InstancePending    InstanceStatus = "pending"
	InstanceInProgress InstanceStatus = "in_progress"
	InstanceCompleted  InstanceStatus = "completed"
	InstanceRejected   InstanceStatus = "rejected"
)

// Action 审批动作
type Action string

const (
	ActionApproved  Action = "approved"
	ActionRejected  Action = "rejected"
	ActionCompleted Action = "completed" // task 阶段的完成确认 / 系统自动推进
)

// SystemUserID 系统自动推进时的记录归属
const SystemUserID = "system"

// ============================================================================
// 数据模型
// ============================================================================

// Template 工作流模板
type Template struct {
	ID          string       `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string       `json:"name" gorm:"size:255;not null"`
	Description string       `json:"description" gorm:"size:1024"`
	Type        TemplateType `json:"type" gorm:"size:50;not null"`
	Stages      []Stage      `json:"stages" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
	CreatedBy   string       `json:"createdBy" gorm:"type:uuid"`
	common.TimestampModel
}

// TableName 指定表名
func (Template) TableName() string {
	return "workflow_templates"
}

// BeforeCreate 创建前生成主键
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// Stage 阶段定义
// StageOrder 在模板内连续且从 0 开始
type Stage struct {
	ID           string            `json:"id" gorm:"type:uuid;primaryKey"`
	TemplateID   string            `json:"templateId" gorm:"type:uuid;not null;index:idx_stage_template_order,unique"`
	Name         string            `json:"name" gorm:"size:255;not null"`
	StageOrder   int               `json:"order" gorm:"not null;index:idx_stage_template_order,unique"`
	Type         StageType         `json:"type" gorm:"size:30;not null"`
	AssigneeID   string            `json:"assigneeId,omitempty" gorm:"type:uuid"`
	AssigneeRole string            `json:"assigneeRole,omitempty" gorm:"size:50"`
	Config       datatypes.JSONMap `json:"config,omitempty"`
	common.TimestampModel
}

// TableName 指定表名
func (Stage) TableName() string {
	return "workflow_stages"
}

// BeforeCreate 创建前生成主键
func (s *Stage) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Instance 工作流实例
// CurrentStage 在 in_progress 期间单调不减，所有推进都是条件更新
type Instance struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	TemplateID   string         `json:"templateId" gorm:"type:uuid;not null;index"`
	ContentID    string         `json:"contentId" gorm:"type:uuid;index"`
	CurrentStage int            `json:"currentStage" gorm:"not null;default:0"`
	Status       InstanceStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	StartedBy    string         `json:"startedBy" gorm:"type:uuid"`
	StartedAt    time.Time      `json:"startedAt"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
	common.TimestampModel
}

// TableName 指定表名
func (Instance) TableName() string {
	return "workflow_instances"
}

// BeforeCreate 创建前生成主键
func (i *Instance) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// IsTerminal 实例是否处于终态
func (i *Instance) IsTerminal() bool {
	return i.Status == InstanceCompleted || i.Status == InstanceRejected
}

// ApprovalRecord 审批记录
// 只追加；同一 (实例, 阶段, 用户) 最多一条
type ApprovalRecord struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	InstanceID string    `json:"instanceId" gorm:"type:uuid;not null;index:idx_approval_unique,unique"`
	StageID    string    `json:"stageId" gorm:"type:uuid;not null;index:idx_approval_unique,unique"`
	UserID     string    `json:"userId" gorm:"type:uuid;not null;index:idx_approval_unique,unique"`
	Action     Action    `json:"action" gorm:"size:20;not null"`
	Comments   string    `json:"comments" gorm:"size:1024"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName 指定表名
func (ApprovalRecord) TableName() string {
	return "workflow_approvals"
}

// BeforeCreate 创建前生成主键
func (a *ApprovalRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// ============================================================================
// 请求与响应类型
// ============================================================================

// StageInput 阶段定义输入
// 顺序由数组位置决定，0 起连续编号
type StageInput struct {
	Name         string         `json:"name" binding:"required,max=255"`
	Type         StageType      `json:"type" binding:"required"`
	AssigneeID   string         `json:"assigneeId"`
	AssigneeRole string         `json:"assigneeRole"`
	Config       map[string]any `json:"config"`
}

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Name        string       `json:"name" binding:"required,max=255"`
	Description string       `json:"description" binding:"omitempty,max=1024"`
	Type        TemplateType `json:"type" binding:"required"`
	Stages      []StageInput `json:"stages"`
}

// StartRequest 启动实例请求
type StartRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	ContentID  string `json:"contentId"`
}

// DecisionRequest 审批请求
// StageID 必须与实例当前阶段一致，过期提交会被拒绝
type DecisionRequest struct {
	StageID  string `json:"stageId" binding:"required"`
	Action   Action `json:"action" binding:"required"`
	Comments string `json:"comments" binding:"omitempty,max=1024"`
}

// DecisionResult 审批结果
type DecisionResult struct {
	Approval *ApprovalRecord `json:"approval"`
	Instance *Instance       `json:"instance"`
}

// PendingItem 待办项
type PendingItem struct {
	Instance  Instance `json:"instance"`
	Stage     Stage    `json:"stage"`
	ContentID string   `json:"contentId"`
}
