package content

import (
	"time"

	"tradekeep/internal/content"
	"tradekeep/internal/publishing"
)

// PublishRequest 发布请求
// Platforms 为空时使用内容自身配置的平台列表
type PublishRequest struct {
	Platforms        []string `json:"platforms"`
	SuppressHashtags bool     `json:"suppressHashtags"`
}

// ScheduleRequest 定时发布请求
type ScheduleRequest struct {
	ScheduledAt      time.Time `json:"scheduledTime" binding:"required"`
	Platforms        []string  `json:"platforms"`
	SuppressHashtags bool      `json:"suppressHashtags"`
}

// ScheduleResponse 定时发布响应
type ScheduleResponse struct {
	Schedule *content.ScheduledPublish `json:"schedule"`
}

// RecordsResponse 发布记录响应
type RecordsResponse struct {
	Records []content.PublishRecord `json:"records"`
	Total   int                     `json:"total"`
}

func formatOptions(suppress bool) publishing.FormatOptions {
	return publishing.FormatOptions{SuppressHashtags: suppress}
}
