package socialiface

import (
	"context"
	"errors"
)

// ErrDeleteUnsupported 平台不支持删除已发布内容
// 调用方据此与普通远端失败区分
var ErrDeleteUnsupported = errors.New("该平台不支持删除已发布内容")

// Post 待发布的帖子
// Text 为已按平台规则格式化后的正文
type Post struct {
	Text      string         `json:"text"`
	MediaURLs []string       `json:"media_urls,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// PublishResult 单平台发布结果
// 适配器错误一律收敛进 Error 字段，不通过 error 返回值上抛
type PublishResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	URL     string `json:"url,omitempty"`
	Mock    bool   `json:"mock,omitempty"` // 模拟结果标记
	Error   string `json:"error,omitempty"`
}

// AccountStatus 平台账号连接状态
type AccountStatus struct {
	Platform  string `json:"platform"`
	Connected bool   `json:"connected"`
	Identity  string `json:"identity,omitempty"` // 账号名/URN
	Mock      bool   `json:"mock,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Adapter 社交平台适配器接口
type Adapter interface {
	// Name 平台标识（twitter, linkedin, instagram, email）
	Name() string

	// Publish 发布帖子，结果内聚在 PublishResult 中
	Publish(ctx context.Context, post *Post) *PublishResult

	// AccountStatus 查询账号连接状态
	AccountStatus(ctx context.Context) *AccountStatus

	// Delete 删除已发布内容，不支持的平台返回 ErrDeleteUnsupported
	Delete(ctx context.Context, postID string) error
}
