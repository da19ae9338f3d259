package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 实体类型
const (
	EntityContent  = "content"
	EntityInstance = "workflow_instance"
	EntityTemplate = "workflow_template"
	EntitySchedule = "scheduled_publish"
)

// 动作类型
const (
	ActionWorkflowStarted   = "workflow_started"
	ActionStageApproved     = "stage_approved"
	ActionStageRejected     = "stage_rejected"
	ActionWorkflowCompleted = "workflow_completed"
	ActionContentPublished  = "content_published"
	ActionPublishScheduled  = "publish_scheduled"
	ActionScheduleCanceled  = "schedule_canceled"
	ActionRemoteDeleted     = "remote_post_deleted"
)

// Log 操作流水
// 记录工作流流转与发布结果，只追加不修改
type Log struct {
	ID         string            `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string            `json:"userId" gorm:"type:uuid;index"`
	Action     string            `json:"action" gorm:"size:50;not null;index"`
	EntityType string            `json:"entityType" gorm:"size:50;not null"`
	EntityID   string            `json:"entityId" gorm:"type:uuid;not null;index"`
	Detail     datatypes.JSONMap `json:"detail"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// TableName 指定表名
func (Log) TableName() string {
	return "activity_logs"
}

// BeforeCreate 创建前生成主键
func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
