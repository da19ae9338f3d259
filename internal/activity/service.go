package activity

import (
	"context"
	"fmt"

	"tradekeep/internal/common"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service 操作流水服务
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService 创建操作流水服务
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Record 记录一条操作流水
// 尽力而为：流水写入失败只记日志，不影响主流程
func (s *Service) Record(ctx context.Context, userID, action, entityType, entityID string, detail map[string]any) {
	log := &Log{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     datatypes.JSONMap(detail),
	}
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		s.logger.Warn("写入操作流水失败",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// ListByEntity 按实体查询操作流水
func (s *Service) ListByEntity(ctx context.Context, entityType, entityID string, page common.PaginationRequest) ([]Log, int64, error) {
	query := s.db.WithContext(ctx).Model(&Log{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计操作流水失败: %w", err)
	}

	var logs []Log
	err := query.Order("created_at DESC").
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询操作流水失败: %w", err)
	}
	return logs, total, nil
}

// ListRecent 最近的操作流水
func (s *Service) ListRecent(ctx context.Context, page common.PaginationRequest) ([]Log, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Log{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计操作流水失败: %w", err)
	}

	var logs []Log
	err := s.db.WithContext(ctx).Model(&Log{}).
		Order("created_at DESC").
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询操作流水失败: %w", err)
	}
	return logs, total, nil
}
