package instagram

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"tradekeep/internal/config"
	"tradekeep/pkg/httputil"
	"tradekeep/pkg/socialiface"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

// Client Instagram Graph API 适配器
// 发布分两步：先创建媒体容器，再发布容器
type Client struct {
	cfg      config.InstagramConfig
	mockMode bool
	http     *httputil.Client
}

// NewClient 创建 Instagram 适配器
func NewClient(cfg config.InstagramConfig, mockMode bool, timeout time.Duration) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:      cfg,
		mockMode: mockMode,
		http:     httputil.NewClient(httputil.WithTimeout(timeout)),
	}
}

// Name 平台标识
func (c *Client) Name() string {
	return "instagram"
}

func (c *Client) configured() bool {
	return c.cfg.AccessToken != "" && c.cfg.BusinessAccountID != ""
}

// Publish 发布图文帖
// 媒体校验先于一切网络调用：Instagram 不接受纯文本帖
func (c *Client) Publish(ctx context.Context, post *socialiface.Post) *socialiface.PublishResult {
	if len(post.MediaURLs) == 0 {
		return &socialiface.PublishResult{Success: false, Error: "Instagram 发布需要至少一张图片"}
	}

	if !c.configured() {
		if c.mockMode {
			mockID := "mock-" + uuid.New().String()[:8]
			return &socialiface.PublishResult{
				Success: true,
				Mock:    true,
				PostID:  mockID,
				URL:     "https://www.instagram.com/p/" + mockID,
			}
		}
		return &socialiface.PublishResult{Success: false, Error: "Instagram 凭证未配置"}
	}

	// 第一步：创建媒体容器
	createURL := fmt.Sprintf("%s/%s/media?image_url=%s&caption=%s&access_token=%s",
		c.cfg.BaseURL, c.cfg.BusinessAccountID,
		url.QueryEscape(post.MediaURLs[0]),
		url.QueryEscape(post.Text),
		url.QueryEscape(c.cfg.AccessToken),
	)
	var container struct {
		ID string `json:"id"`
	}
	if err := c.http.PostJSON(ctx, createURL, nil, &container); err != nil {
		return &socialiface.PublishResult{Success: false, Error: fmt.Sprintf("Instagram 创建媒体容器失败: %v", err)}
	}
	if container.ID == "" {
		return &socialiface.PublishResult{Success: false, Error: "Instagram 响应缺少容器ID"}
	}

	// 第二步：发布容器
	publishURL := fmt.Sprintf("%s/%s/media_publish?creation_id=%s&access_token=%s",
		c.cfg.BaseURL, c.cfg.BusinessAccountID, container.ID, url.QueryEscape(c.cfg.AccessToken),
	)
	var published struct {
		ID string `json:"id"`
	}
	if err := c.http.PostJSON(ctx, publishURL, nil, &published); err != nil {
		return &socialiface.PublishResult{Success: false, Error: fmt.Sprintf("Instagram 发布失败: %v", err)}
	}

	return &socialiface.PublishResult{
		Success: true,
		PostID:  published.ID,
		URL:     "https://www.instagram.com/p/" + published.ID,
	}
}

// AccountStatus 查询账号连接状态
func (c *Client) AccountStatus(ctx context.Context) *socialiface.AccountStatus {
	if !c.configured() {
		status := &socialiface.AccountStatus{Platform: c.Name(), Connected: c.mockMode, Mock: c.mockMode}
		if !c.mockMode {
			status.Error = "Instagram 凭证未配置"
		}
		return status
	}

	statusURL := fmt.Sprintf("%s/%s?fields=username&access_token=%s",
		c.cfg.BaseURL, c.cfg.BusinessAccountID, url.QueryEscape(c.cfg.AccessToken))
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.http.GetJSON(ctx, statusURL, &resp); err != nil {
		return &socialiface.AccountStatus{Platform: c.Name(), Connected: false, Error: err.Error()}
	}

	return &socialiface.AccountStatus{
		Platform:  c.Name(),
		Connected: true,
		Identity:  "@" + resp.Username,
	}
}

// Delete Instagram Graph API 不支持通过 API 删除帖子
func (c *Client) Delete(ctx context.Context, postID string) error {
	return socialiface.ErrDeleteUnsupported
}
