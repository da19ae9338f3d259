package linkedin

import (
	"context"
	"fmt"
	"time"

	"tradekeep/internal/config"
	"tradekeep/pkg/httputil"
	"tradekeep/pkg/socialiface"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.linkedin.com"

// Client LinkedIn 适配器
type Client struct {
	cfg      config.LinkedInConfig
	mockMode bool
	http     *httputil.Client
}

// NewClient 创建 LinkedIn 适配器
func NewClient(cfg config.LinkedInConfig, mockMode bool, timeout time.Duration) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:      cfg,
		mockMode: mockMode,
		http: httputil.NewClient(
			httputil.WithTimeout(timeout),
			httputil.WithHeaders(map[string]string{
				"Authorization":             "Bearer " + cfg.AccessToken,
				"X-Restli-Protocol-Version": "2.0.0",
			}),
		),
	}
}

// Name 平台标识
func (c *Client) Name() string {
	return "linkedin"
}

func (c *Client) configured() bool {
	return c.cfg.AccessToken != "" && c.cfg.AuthorURN != ""
}

// Publish 发布动态
func (c *Client) Publish(ctx context.Context, post *socialiface.Post) *socialiface.PublishResult {
	if !c.configured() {
		if c.mockMode {
			mockID := "urn:li:share:mock-" + uuid.New().String()[:8]
			return &socialiface.PublishResult{
				Success: true,
				Mock:    true,
				PostID:  mockID,
				URL:     "https://www.linkedin.com/feed/update/" + mockID,
			}
		}
		return &socialiface.PublishResult{Success: false, Error: "LinkedIn 凭证未配置"}
	}

	body := map[string]any{
		"author":         c.cfg.AuthorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": post.Text},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.http.PostJSON(ctx, c.cfg.BaseURL+"/v2/ugcPosts", body, &resp); err != nil {
		return &socialiface.PublishResult{Success: false, Error: fmt.Sprintf("LinkedIn 发布失败: %v", err)}
	}
	if resp.ID == "" {
		return &socialiface.PublishResult{Success: false, Error: "LinkedIn 响应缺少动态ID"}
	}

	return &socialiface.PublishResult{
		Success: true,
		PostID:  resp.ID,
		URL:     "https://www.linkedin.com/feed/update/" + resp.ID,
	}
}

// AccountStatus 查询账号连接状态
func (c *Client) AccountStatus(ctx context.Context) *socialiface.AccountStatus {
	if !c.configured() {
		status := &socialiface.AccountStatus{Platform: c.Name(), Connected: c.mockMode, Mock: c.mockMode}
		if !c.mockMode {
			status.Error = "LinkedIn 凭证未配置"
		}
		return status
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.http.GetJSON(ctx, c.cfg.BaseURL+"/v2/me", &resp); err != nil {
		return &socialiface.AccountStatus{Platform: c.Name(), Connected: false, Error: err.Error()}
	}

	return &socialiface.AccountStatus{
		Platform:  c.Name(),
		Connected: true,
		Identity:  c.cfg.AuthorURN,
	}
}

// Delete LinkedIn UGC API 不提供删除能力
func (c *Client) Delete(ctx context.Context, postID string) error {
	return socialiface.ErrDeleteUnsupported
}
