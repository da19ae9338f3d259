package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"tradekeep/internal/config"
	"tradekeep/pkg/smtputil"
)

// EmailNotifier SMTP 邮件通知器
type EmailNotifier struct {
	cfg config.SMTPConfig
}

// NewEmailNotifier 创建邮件通知器
// SMTP 未配置时返回 nil，调用方需做 nil 检查
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	if cfg.Host == "" || cfg.From == "" {
		return nil
	}
	return &EmailNotifier{cfg: cfg}
}

// Send 发送一封纯文本通知邮件，发送时长受 ctx 约束
func (e *EmailNotifier) Send(ctx context.Context, to, subject, body string) error {
	message := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		e.cfg.FromName,
		e.cfg.From,
		to,
		subject,
		body,
	)

	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)

	if err := smtputil.SendMail(ctx, addr, auth, e.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}
