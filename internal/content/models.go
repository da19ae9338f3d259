package content

import (
	"time"

	"tradekeep/internal/common"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================================
// 状态定义
// ============================================================================

// Status 内容状态
type Status string

const (
	StatusDraft              Status = "draft"               // 草稿
	StatusReview             Status = "review"              // 审批中
	StatusApproved           Status = "approved"            // 审批通过
	StatusPublished          Status = "published"           // 全部平台发布成功
	StatusPartiallyPublished Status = "partially_published" // 部分平台发布成功
	StatusScheduled          Status = "scheduled"           // 已排期
	StatusArchived           Status = "archived"            // 已归档
)

// ScheduleStatus 定时发布计划状态
type ScheduleStatus string

const (
	ScheduleStatusPending  ScheduleStatus = "pending"  // 等待执行
	ScheduleStatusRunning  ScheduleStatus = "running"  // 执行中
	ScheduleStatusDone     ScheduleStatus = "done"     // 已执行
	ScheduleStatusFailed   ScheduleStatus = "failed"   // 执行失败
	ScheduleStatusCanceled ScheduleStatus = "canceled" // 已取消
)

// ============================================================================
// 数据模型
// ============================================================================

// Item 内容条目
type Item struct {
	ID          string                      `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string                      `json:"title" gorm:"size:255;not null"`
	Body        string                      `json:"body" gorm:"type:text"`
	Type        string                      `json:"type" gorm:"size:50"` // article, post, newsletter
	BrandPillar string                      `json:"brandPillar" gorm:"size:50"`
	Platforms   datatypes.JSONSlice[string] `json:"platforms"` // 默认发布平台列表
	MediaURLs   datatypes.JSONSlice[string] `json:"mediaUrls"`
	Status      Status                      `json:"status" gorm:"size:30;not null;default:draft;index"`
	ScheduledAt *time.Time                  `json:"scheduledAt,omitempty"`
	PublishedAt *time.Time                  `json:"publishedAt,omitempty"`
	CreatedBy   string                      `json:"createdBy" gorm:"type:uuid;index"`
	common.TimestampModel
}

// TableName 指定表名
func (Item) TableName() string {
	return "content_items"
}

// BeforeCreate 创建前生成主键
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// PublishRecord 平台发布成功记录
// 每个平台一次成功发布对应一行，保存远端 postID 供删除时使用
type PublishRecord struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	ContentID   string    `json:"contentId" gorm:"type:uuid;not null;index"`
	Platform    string    `json:"platform" gorm:"size:30;not null;index"`
	PostID      string    `json:"postId" gorm:"size:255;not null"`
	URL         string    `json:"url" gorm:"size:512"`
	Mock        bool      `json:"mock"` // 模拟发布结果
	PublishedAt time.Time `json:"publishedAt" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName 指定表名
func (PublishRecord) TableName() string {
	return "publish_records"
}

// BeforeCreate 创建前生成主键
func (r *PublishRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// ScheduledPublish 定时发布计划
// pending → running 的认领采用条件更新，重复投递的任务只会成功认领一次
type ScheduledPublish struct {
	ID          string                      `json:"id" gorm:"type:uuid;primaryKey"`
	ContentID   string                      `json:"contentId" gorm:"type:uuid;not null;index"`
	Platforms   datatypes.JSONSlice[string] `json:"platforms"`
	Options     datatypes.JSONMap           `json:"options"`
	ScheduledAt time.Time                   `json:"scheduledAt" gorm:"not null;index"`
	Status      ScheduleStatus              `json:"status" gorm:"size:20;not null;default:pending;index"`
	FiredAt     *time.Time                  `json:"firedAt,omitempty"`
	Error       string                      `json:"error,omitempty" gorm:"size:1024"`
	CreatedBy   string                      `json:"createdBy" gorm:"type:uuid"`
	common.TimestampModel
}

// TableName 指定表名
func (ScheduledPublish) TableName() string {
	return "scheduled_publishes"
}

// BeforeCreate 创建前生成主键
func (s *ScheduledPublish) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// ============================================================================
// 请求类型
// ============================================================================

// CreateRequest 创建内容请求
type CreateRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Body        string   `json:"body"`
	Type        string   `json:"type" binding:"omitempty,max=50"`
	BrandPillar string   `json:"brandPillar" binding:"omitempty,max=50"`
	Platforms   []string `json:"platforms"`
	MediaURLs   []string `json:"mediaUrls"`
}

// UpdateRequest 更新内容请求
type UpdateRequest struct {
	Title       *string   `json:"title" binding:"omitempty,max=255"`
	Body        *string   `json:"body"`
	Type        *string   `json:"type" binding:"omitempty,max=50"`
	BrandPillar *string   `json:"brandPillar" binding:"omitempty,max=50"`
	Platforms   *[]string `json:"platforms"`
	MediaURLs   *[]string `json:"mediaUrls"`
}

// ListRequest 内容列表请求
type ListRequest struct {
	common.PaginationRequest
	Status  string `json:"status" form:"status"`
	Keyword string `json:"keyword" form:"keyword"`
}
