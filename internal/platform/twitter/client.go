package twitter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tradekeep/internal/config"
	"tradekeep/pkg/httputil"
	"tradekeep/pkg/socialiface"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.twitter.com"

// Client Twitter/X 适配器
type Client struct {
	cfg      config.TwitterConfig
	mockMode bool
	http     *httputil.Client
}

// NewClient 创建 Twitter 适配器
func NewClient(cfg config.TwitterConfig, mockMode bool, timeout time.Duration) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:      cfg,
		mockMode: mockMode,
		http: httputil.NewClient(
			httputil.WithTimeout(timeout),
			httputil.WithHeaders(map[string]string{
				"Authorization": "Bearer " + cfg.AccessToken,
			}),
		),
	}
}

// Name 平台标识
func (c *Client) Name() string {
	return "twitter"
}

func (c *Client) configured() bool {
	return c.cfg.AccessToken != ""
}

// Publish 发布推文
func (c *Client) Publish(ctx context.Context, post *socialiface.Post) *socialiface.PublishResult {
	if !c.configured() {
		if c.mockMode {
			mockID := "mock-" + uuid.New().String()[:8]
			return &socialiface.PublishResult{
				Success: true,
				Mock:    true,
				PostID:  mockID,
				URL:     fmt.Sprintf("https://twitter.com/i/web/status/%s", mockID),
			}
		}
		return &socialiface.PublishResult{Success: false, Error: "Twitter 凭证未配置"}
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	body := map[string]any{"text": post.Text}
	if err := c.http.PostJSON(ctx, c.cfg.BaseURL+"/2/tweets", body, &resp); err != nil {
		return &socialiface.PublishResult{Success: false, Error: fmt.Sprintf("Twitter 发布失败: %v", err)}
	}
	if resp.Data.ID == "" {
		return &socialiface.PublishResult{Success: false, Error: "Twitter 响应缺少推文ID"}
	}

	return &socialiface.PublishResult{
		Success: true,
		PostID:  resp.Data.ID,
		URL:     fmt.Sprintf("https://twitter.com/i/web/status/%s", resp.Data.ID),
	}
}

// AccountStatus 查询账号连接状态
func (c *Client) AccountStatus(ctx context.Context) *socialiface.AccountStatus {
	if !c.configured() {
		return &socialiface.AccountStatus{
			Platform:  c.Name(),
			Connected: c.mockMode,
			Mock:      c.mockMode,
			Error:     ifNotMock(c.mockMode, "Twitter 凭证未配置"),
		}
	}

	var resp struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := c.http.GetJSON(ctx, c.cfg.BaseURL+"/2/users/me", &resp); err != nil {
		return &socialiface.AccountStatus{Platform: c.Name(), Connected: false, Error: err.Error()}
	}

	return &socialiface.AccountStatus{
		Platform:  c.Name(),
		Connected: true,
		Identity:  "@" + resp.Data.Username,
	}
}

// Delete 删除推文
func (c *Client) Delete(ctx context.Context, postID string) error {
	if !c.configured() {
		if c.mockMode {
			return nil
		}
		return fmt.Errorf("Twitter 凭证未配置")
	}

	resp, err := c.http.Delete(ctx, c.cfg.BaseURL+"/2/tweets/"+postID)
	if err != nil {
		return fmt.Errorf("删除推文失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("删除推文失败，状态码: %d", resp.StatusCode)
	}
	return nil
}

func ifNotMock(mock bool, msg string) string {
	if mock {
		return ""
	}
	return msg
}
