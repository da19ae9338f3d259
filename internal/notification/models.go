package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type 通知类型
type Type string

const (
	TypeApprovalRequest Type = "approval_request" // 等待审批
	TypeStatusChange    Type = "status_change"    // 工作流状态变更
	TypeAssignment      Type = "assignment"       // 阶段指派
)

// Notification 站内通知
type Notification struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string     `json:"userId" gorm:"type:uuid;not null;index"`
	Type        Type       `json:"type" gorm:"size:50;not null"`
	Message     string     `json:"message" gorm:"size:1024;not null"`
	RelatedType string     `json:"relatedType" gorm:"size:50"` // workflow_instance, content
	RelatedID   string     `json:"relatedId" gorm:"type:uuid;index"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate 创建前生成主键
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
