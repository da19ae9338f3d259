package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradekeep/internal/common"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service 内容服务
type Service struct {
	*common.BaseService
}

// NewService 创建内容服务
func NewService(db *gorm.DB) *Service {
	return &Service{BaseService: common.NewBaseService(db)}
}

// Create 创建内容（初始状态为草稿）
func (s *Service) Create(ctx context.Context, req *CreateRequest, createdBy string) (*Item, error) {
	item := &Item{
		Title:       req.Title,
		Body:        req.Body,
		Type:        req.Type,
		BrandPillar: req.BrandPillar,
		Platforms:   datatypes.NewJSONSlice(req.Platforms),
		MediaURLs:   datatypes.NewJSONSlice(req.MediaURLs),
		Status:      StatusDraft,
		CreatedBy:   createdBy,
	}
	if err := s.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("创建内容失败: %w", err)
	}
	return item, nil
}

// Get 按ID获取内容
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodeContentNotFound)
		}
		return nil, fmt.Errorf("查询内容失败: %w", err)
	}
	return &item, nil
}

// Update 更新内容字段
func (s *Service) Update(ctx context.Context, id string, req *UpdateRequest) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.BrandPillar != nil {
		updates["brand_pillar"] = *req.BrandPillar
	}
	if req.Platforms != nil {
		updates["platforms"] = datatypes.NewJSONSlice(*req.Platforms)
	}
	if req.MediaURLs != nil {
		updates["media_urls"] = datatypes.NewJSONSlice(*req.MediaURLs)
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.DB.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新内容失败: %w", err)
	}
	return s.Get(ctx, id)
}

// List 内容列表
func (s *Service) List(ctx context.Context, req *ListRequest) ([]Item, int64, error) {
	query := s.DB.WithContext(ctx).Model(&Item{})
	query = s.ApplyStatusFilter(query, req.Status)
	query = s.ApplyKeywordSearch(query, req.Keyword, []string{"title", "body"})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计内容失败: %w", err)
	}

	var items []Item
	err := s.ApplyPaginationRequest(query.Order("created_at DESC"), req.PaginationRequest).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询内容列表失败: %w", err)
	}
	return items, total, nil
}

// UpdateStatus 更新内容状态
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	result := s.DB.WithContext(ctx).Model(&Item{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("更新内容状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.NewBusinessErrorWithCode(common.CodeContentNotFound)
	}
	return nil
}

// MarkPublished 发布后更新内容状态并盖发布时间戳
func (s *Service) MarkPublished(ctx context.Context, id string, status Status, publishedAt time.Time) error {
	result := s.DB.WithContext(ctx).Model(&Item{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"published_at": publishedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("更新发布状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.NewBusinessErrorWithCode(common.CodeContentNotFound)
	}
	return nil
}

// ListPublishRecords 内容的平台发布记录
func (s *Service) ListPublishRecords(ctx context.Context, contentID string) ([]PublishRecord, error) {
	var records []PublishRecord
	err := s.DB.WithContext(ctx).
		Scopes(common.ByContent(contentID)).
		Order("published_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询发布记录失败: %w", err)
	}
	return records, nil
}

// FindPublishRecord 按平台与远端 postID 查找发布记录
func (s *Service) FindPublishRecord(ctx context.Context, platform, postID string) (*PublishRecord, error) {
	var record PublishRecord
	err := s.DB.WithContext(ctx).
		Where("platform = ? AND post_id = ?", platform, postID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodePostRecordNotFound)
		}
		return nil, fmt.Errorf("查询发布记录失败: %w", err)
	}
	return &record, nil
}

// DeletePublishRecord 删除发布记录（远端删除成功后调用）
func (s *Service) DeletePublishRecord(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Delete(&PublishRecord{}, "id = ?", id).Error
}
