package identity

import (
	"context"
	"errors"
	"fmt"

	"tradekeep/internal/common"

	"gorm.io/gorm"
)

// Service 用户服务
type Service struct {
	db *gorm.DB
}

// NewService 创建用户服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetUser 按ID获取用户
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodeUserNotFound)
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// ResolveUsersByRole 按角色解析当前持有该角色的活跃用户
// 每次通知时实时查询，角色成员变动立即生效
func (s *Service) ResolveUsersByRole(ctx context.Context, role string) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).
		Scopes(common.ActiveOnly()).
		Where("role = ?", role).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("按角色查询用户失败: %w", err)
	}
	return users, nil
}

// CreateUser 创建用户
func (s *Service) CreateUser(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}

// ListUsers 用户列表
func (s *Service) ListUsers(ctx context.Context, page common.PaginationRequest) ([]User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计用户失败: %w", err)
	}

	var users []User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询用户列表失败: %w", err)
	}
	return users, total, nil
}
