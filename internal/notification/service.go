package notification

import (
	"context"
	"fmt"
	"time"

	"tradekeep/internal/common"
	"tradekeep/internal/identity"
	"tradekeep/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service 通知服务
// 站内通知落库，配置了 SMTP 时同步发送邮件（尽力而为）
type Service struct {
	db       *gorm.DB
	identity *identity.Service
	email    *EmailNotifier
	logger   *zap.Logger
}

// Option 服务配置选项
type Option func(*Service)

// WithEmailNotifier 接入邮件通知器
func WithEmailNotifier(email *EmailNotifier) Option {
	return func(s *Service) {
		s.email = email
	}
}

// NewService 创建通知服务
func NewService(db *gorm.DB, identitySvc *identity.Service, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:       db,
		identity: identitySvc,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify 给指定用户发送通知
func (s *Service) Notify(ctx context.Context, userIDs []string, typ Type, message, relatedType, relatedID string) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, Notification{
			UserID:      userID,
			Type:        typ,
			Message:     message,
			RelatedType: relatedType,
			RelatedID:   relatedID,
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("写入通知失败: %w", err)
	}
	metrics.NotificationsSent.WithLabelValues("inapp").Add(float64(len(rows)))

	s.deliverEmails(ctx, userIDs, typ, message)
	return nil
}

// NotifyRole 给持有指定角色的用户发送通知
// 角色成员在通知发出时实时解析，成员变动立即生效
func (s *Service) NotifyRole(ctx context.Context, role string, typ Type, message, relatedType, relatedID string) error {
	users, err := s.identity.ResolveUsersByRole(ctx, role)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		s.logger.Warn("角色下没有可通知的用户", zap.String("role", role))
		return nil
	}

	userIDs := make([]string, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}
	return s.Notify(ctx, userIDs, typ, message, relatedType, relatedID)
}

// deliverEmails 异步投递邮件副本
func (s *Service) deliverEmails(ctx context.Context, userIDs []string, typ Type, message string) {
	if s.email == nil {
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		subject := "TradeKeep 通知"
		if typ == TypeApprovalRequest {
			subject = "TradeKeep 审批提醒"
		}

		for _, userID := range userIDs {
			user, err := s.identity.GetUser(sendCtx, userID)
			if err != nil {
				continue
			}
			if err := s.email.Send(sendCtx, user.Email, subject, message); err != nil {
				s.logger.Warn("通知邮件发送失败",
					zap.String("user_id", userID),
					zap.Error(err),
				)
				continue
			}
			metrics.NotificationsSent.WithLabelValues("email").Inc()
		}
	}()
}

// ListForUser 用户通知列表
func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool, page common.PaginationRequest) ([]Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Scopes(common.UnreadOnly())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计通知失败: %w", err)
	}

	var rows []Notification
	err := query.Order("created_at DESC").
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询通知失败: %w", err)
	}
	return rows, total, nil
}

// MarkRead 标记通知为已读
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	result := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("标记已读失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.NewBusinessErrorWithCode(common.CodeNotFound)
	}
	return nil
}
