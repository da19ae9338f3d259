package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"tradekeep/internal/config"
	"tradekeep/pkg/smtputil"
	"tradekeep/pkg/socialiface"

	"github.com/google/uuid"
)

// Client 邮件发布渠道适配器
// 把内容作为邮件推送给配置的订阅列表
type Client struct {
	smtpCfg    config.SMTPConfig
	recipients []string
	mockMode   bool
}

// NewClient 创建邮件适配器
func NewClient(smtpCfg config.SMTPConfig, recipients []string, mockMode bool) *Client {
	return &Client{
		smtpCfg:    smtpCfg,
		recipients: recipients,
		mockMode:   mockMode,
	}
}

// Name 平台标识
func (c *Client) Name() string {
	return "email"
}

func (c *Client) configured() bool {
	return c.smtpCfg.Host != "" && c.smtpCfg.From != "" && len(c.recipients) > 0
}

// Publish 将内容以邮件形式发送给订阅列表
// 邮件主题取正文的第一行
func (c *Client) Publish(ctx context.Context, post *socialiface.Post) *socialiface.PublishResult {
	if !c.configured() {
		if c.mockMode {
			return &socialiface.PublishResult{
				Success: true,
				Mock:    true,
				PostID:  "mock-" + uuid.New().String()[:8],
			}
		}
		return &socialiface.PublishResult{Success: false, Error: "SMTP 或收件人未配置"}
	}

	subject := post.Text
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}

	messageID := uuid.New().String()
	message := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"Message-ID: <%s@tradekeep>\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		c.smtpCfg.FromName,
		c.smtpCfg.From,
		strings.Join(c.recipients, ", "),
		subject,
		messageID,
		post.Text,
	)

	auth := smtp.PlainAuth("", c.smtpCfg.Username, c.smtpCfg.Password, c.smtpCfg.Host)
	addr := fmt.Sprintf("%s:%d", c.smtpCfg.Host, c.smtpCfg.Port)

	if err := smtputil.SendMail(ctx, addr, auth, c.smtpCfg.From, c.recipients, []byte(message)); err != nil {
		return &socialiface.PublishResult{Success: false, Error: fmt.Sprintf("发送邮件失败: %v", err)}
	}

	return &socialiface.PublishResult{Success: true, PostID: messageID}
}

// AccountStatus 查询邮件渠道配置状态
func (c *Client) AccountStatus(ctx context.Context) *socialiface.AccountStatus {
	if !c.configured() {
		status := &socialiface.AccountStatus{Platform: c.Name(), Connected: c.mockMode, Mock: c.mockMode}
		if !c.mockMode {
			status.Error = "SMTP 或收件人未配置"
		}
		return status
	}
	return &socialiface.AccountStatus{
		Platform:  c.Name(),
		Connected: true,
		Identity:  c.smtpCfg.From,
	}
}

// Delete 邮件发出后无法撤回
func (c *Client) Delete(ctx context.Context, postID string) error {
	return socialiface.ErrDeleteUnsupported
}
