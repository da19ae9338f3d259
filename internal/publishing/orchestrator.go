package publishing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tradekeep/internal/activity"
	"tradekeep/internal/common"
	"tradekeep/internal/content"
	"tradekeep/internal/infra/queue"
	"tradekeep/internal/metrics"
	"tradekeep/internal/platform"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlatformOutcome 单平台发布结果
type PlatformOutcome struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	Skipped  bool   `json:"skipped,omitempty"`
	Mock     bool   `json:"mock,omitempty"`
	PostID   string `json:"postId,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result 聚合发布结果
type Result struct {
	ContentID  string                      `json:"contentId"`
	Outcomes   map[string]*PlatformOutcome `json:"outcomes"`
	Successful int                         `json:"successful"`
	Failed     int                         `json:"failed"`
	Skipped    int                         `json:"skipped"`
}

// Orchestrator 发布编排器
// 并发扇出到各平台适配器，单平台失败互不影响，结果在锁保护下聚合
type Orchestrator struct {
	db       *gorm.DB
	content  *content.Service
	registry *platform.Registry
	queue    queue.Client
	activity *activity.Service
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// OrchestratorOption 编排器配置选项
type OrchestratorOption func(*Orchestrator)

// WithQueue 接入任务队列（定时发布依赖）
func WithQueue(q queue.Client) OrchestratorOption {
	return func(o *Orchestrator) {
		o.queue = q
	}
}

// WithActivity 接入操作流水
func WithActivity(a *activity.Service) OrchestratorOption {
	return func(o *Orchestrator) {
		o.activity = a
	}
}

// WithPlatformTimeout 设置单平台发布超时
func WithPlatformTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// withClock 测试用：替换时钟
func withClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator 创建发布编排器
func NewOrchestrator(db *gorm.DB, contentSvc *content.Service, registry *platform.Registry, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		db:       db,
		content:  contentSvc,
		registry: registry,
		timeout:  30 * time.Second,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Publish 发布内容到指定平台
// platforms 为空时使用内容自身配置的平台列表
// 编排层错误（内容不存在、平台列表为空）通过 error 返回，适配器错误只体现在结果里
func (o *Orchestrator) Publish(ctx context.Context, contentID string, platforms []string, opts FormatOptions, actorID string) (*Result, error) {
	item, err := o.content.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if len(platforms) == 0 {
		platforms = item.Platforms
	}
	platforms = normalizePlatforms(platforms)
	if len(platforms) == 0 {
		return nil, common.NewBusinessErrorWithCode(common.CodeNoValidPlatform)
	}

	result := &Result{
		ContentID: contentID,
		Outcomes:  make(map[string]*PlatformOutcome, len(platforms)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range platforms {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			outcome := o.publishOne(ctx, item, name, opts)
			mu.Lock()
			result.Outcomes[name] = outcome
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Skipped:
			result.Skipped++
		case outcome.Success:
			result.Successful++
		default:
			result.Failed++
		}
	}

	if result.Successful > 0 {
		if err := o.finalizePublish(ctx, item, result, actorID); err != nil {
			return nil, err
		}
	}

	o.logger.Info("发布完成",
		zap.String("content_id", contentID),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// publishOne 发布到单个平台，panic 与错误都收敛进该平台的结果槽
func (o *Orchestrator) publishOne(ctx context.Context, item *content.Item, name string, opts FormatOptions) (outcome *PlatformOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("平台适配器 panic",
				zap.String("platform", name),
				zap.Any("panic", r),
			)
			metrics.PublishAttempts.WithLabelValues(name, "failed").Inc()
			outcome = &PlatformOutcome{
				Platform: name,
				Success:  false,
				Error:    fmt.Sprintf("适配器异常: %v", r),
			}
		}
	}()

	adapter, ok := o.registry.Get(name)
	if !ok {
		metrics.PublishAttempts.WithLabelValues(name, "skipped").Inc()
		return &PlatformOutcome{
			Platform: name,
			Skipped:  true,
			Error:    common.GetErrorMessage(common.CodePlatformUnknown),
		}
	}

	post := &platform.Post{
		Text:      Format(item, name, opts),
		MediaURLs: item.MediaURLs,
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	res := adapter.Publish(callCtx, post)
	metrics.PublishDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	label := "failed"
	if res.Success {
		label = "success"
		if res.Mock {
			label = "mock"
		}
	}
	metrics.PublishAttempts.WithLabelValues(name, label).Inc()

	return &PlatformOutcome{
		Platform: name,
		Success:  res.Success,
		Mock:     res.Mock,
		PostID:   res.PostID,
		URL:      res.URL,
		Error:    res.Error,
	}
}

// finalizePublish 至少一个平台成功后落库：发布记录 + 内容状态
func (o *Orchestrator) finalizePublish(ctx context.Context, item *content.Item, result *Result, actorID string) error {
	publishedAt := o.now()

	records := make([]content.PublishRecord, 0, result.Successful)
	for _, outcome := range result.Outcomes {
		if !outcome.Success {
			continue
		}
		records = append(records, content.PublishRecord{
			ContentID:   item.ID,
			Platform:    outcome.Platform,
			PostID:      outcome.PostID,
			URL:         outcome.URL,
			Mock:        outcome.Mock,
			PublishedAt: publishedAt,
		})
	}
	if err := o.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("写入发布记录失败: %w", err)
	}

	status := content.StatusPublished
	if result.Failed > 0 {
		status = content.StatusPartiallyPublished
	}
	if err := o.content.MarkPublished(ctx, item.ID, status, publishedAt); err != nil {
		return err
	}

	if o.activity != nil {
		o.activity.Record(ctx, actorID, activity.ActionContentPublished, activity.EntityContent, item.ID, map[string]any{
			"status":     string(status),
			"successful": result.Successful,
			"failed":     result.Failed,
			"skipped":    result.Skipped,
		})
	}
	return nil
}

// AutoPublish 工作流终审通过后的自动发布
// 使用内容自身配置的平台列表与默认格式化选项
func (o *Orchestrator) AutoPublish(ctx context.Context, contentID string) error {
	_, err := o.Publish(ctx, contentID, nil, FormatOptions{}, "system")
	return err
}

// Schedule 创建定时发布计划
// 计划时间必须严格晚于当前时间，校验失败时不产生任何状态变更
func (o *Orchestrator) Schedule(ctx context.Context, contentID string, platforms []string, at time.Time, opts FormatOptions, actorID string) (*content.ScheduledPublish, error) {
	if !at.After(o.now()) {
		return nil, common.NewBusinessErrorWithCode(common.CodeScheduleInPast)
	}
	if o.queue == nil {
		return nil, common.NewBusinessError(common.CodeServiceUnavailable, "任务队列未接入，无法定时发布")
	}

	item, err := o.content.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if len(platforms) == 0 {
		platforms = item.Platforms
	}
	platforms = normalizePlatforms(platforms)
	if len(platforms) == 0 {
		return nil, common.NewBusinessErrorWithCode(common.CodeNoValidPlatform)
	}

	schedule := &content.ScheduledPublish{
		ContentID:   contentID,
		Platforms:   datatypes.NewJSONSlice(platforms),
		Options:     datatypes.JSONMap{"suppress_hashtags": opts.SuppressHashtags},
		ScheduledAt: at,
		Status:      content.ScheduleStatusPending,
		CreatedBy:   actorID,
	}
	if err := o.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return nil, fmt.Errorf("创建发布计划失败: %w", err)
	}

	// 入队失败时撤销计划，避免永远不会执行的 pending 行
	if err := o.queue.EnqueueScheduledPublish(schedule.ID, at); err != nil {
		o.db.WithContext(ctx).Delete(&content.ScheduledPublish{}, "id = ?", schedule.ID)
		return nil, fmt.Errorf("定时任务入队失败: %w", err)
	}

	o.db.WithContext(ctx).Model(&content.Item{}).
		Where("id = ?", contentID).
		Updates(map[string]any{
			"status":       content.StatusScheduled,
			"scheduled_at": at,
		})

	if o.activity != nil {
		o.activity.Record(ctx, actorID, activity.ActionPublishScheduled, activity.EntitySchedule, schedule.ID, map[string]any{
			"content_id":   contentID,
			"scheduled_at": at,
			"platforms":    platforms,
		})
	}
	return schedule, nil
}

// CancelSchedule 取消定时发布计划
// 只能取消 pending 状态的计划；已入队的任务执行时发现计划非 pending 会直接跳过
func (o *Orchestrator) CancelSchedule(ctx context.Context, scheduleID, actorID string) error {
	result := o.db.WithContext(ctx).Model(&content.ScheduledPublish{}).
		Where("id = ? AND status = ?", scheduleID, content.ScheduleStatusPending).
		Update("status", content.ScheduleStatusCanceled)
	if result.Error != nil {
		return fmt.Errorf("取消发布计划失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		o.db.WithContext(ctx).Model(&content.ScheduledPublish{}).
			Where("id = ?", scheduleID).Count(&count)
		if count == 0 {
			return common.NewBusinessErrorWithCode(common.CodeScheduleNotFound)
		}
		return common.NewBusinessErrorWithCode(common.CodeScheduleNotPending)
	}

	var schedule content.ScheduledPublish
	if err := o.db.WithContext(ctx).First(&schedule, "id = ?", scheduleID).Error; err == nil {
		// 内容仍处于排期状态时回退到审批通过
		o.db.WithContext(ctx).Model(&content.Item{}).
			Where("id = ? AND status = ?", schedule.ContentID, content.StatusScheduled).
			Updates(map[string]any{
				"status":       content.StatusApproved,
				"scheduled_at": nil,
			})
	}

	if o.activity != nil {
		o.activity.Record(ctx, actorID, activity.ActionScheduleCanceled, activity.EntitySchedule, scheduleID, nil)
	}
	return nil
}

// ExecuteScheduled 执行定时发布计划（由 worker 调用）
// 通过 pending → running 的条件更新认领计划，重复投递的任务只会认领成功一次
func (o *Orchestrator) ExecuteScheduled(ctx context.Context, scheduleID string) error {
	firedAt := o.now()
	claim := o.db.WithContext(ctx).Model(&content.ScheduledPublish{}).
		Where("id = ? AND status = ?", scheduleID, content.ScheduleStatusPending).
		Updates(map[string]any{
			"status":   content.ScheduleStatusRunning,
			"fired_at": firedAt,
		})
	if claim.Error != nil {
		return fmt.Errorf("认领发布计划失败: %w", claim.Error)
	}
	if claim.RowsAffected == 0 {
		// 已被执行、已取消或不存在，幂等跳过
		metrics.ScheduledPublishFired.WithLabelValues("stale").Inc()
		o.logger.Info("发布计划已失效，跳过执行", zap.String("schedule_id", scheduleID))
		return nil
	}

	var schedule content.ScheduledPublish
	if err := o.db.WithContext(ctx).First(&schedule, "id = ?", scheduleID).Error; err != nil {
		return fmt.Errorf("加载发布计划失败: %w", err)
	}

	opts := FormatOptions{}
	if v, ok := schedule.Options["suppress_hashtags"].(bool); ok {
		opts.SuppressHashtags = v
	}

	result, err := o.Publish(ctx, schedule.ContentID, schedule.Platforms, opts, schedule.CreatedBy)
	if err != nil {
		// 发布层错误（内容不存在、无可用平台）是确定性的，重试不会改变结果；
		// 失败记入计划行后向队列返回成功，避免空转重试
		metrics.ScheduledPublishFired.WithLabelValues("failed").Inc()
		o.logger.Error("定时发布执行失败",
			zap.String("schedule_id", scheduleID),
			zap.Error(err),
		)
		return o.db.WithContext(ctx).Model(&content.ScheduledPublish{}).
			Where("id = ?", scheduleID).
			Updates(map[string]any{
				"status": content.ScheduleStatusFailed,
				"error":  err.Error(),
			}).Error
	}

	status := content.ScheduleStatusDone
	errMsg := ""
	if result.Successful == 0 {
		status = content.ScheduleStatusFailed
		errMsg = common.GetErrorMessage(common.CodePublishFailed)
	}
	metrics.ScheduledPublishFired.WithLabelValues(string(status)).Inc()

	return o.db.WithContext(ctx).Model(&content.ScheduledPublish{}).
		Where("id = ?", scheduleID).
		Updates(map[string]any{
			"status": status,
			"error":  errMsg,
		}).Error
}

// ConnectionStatuses 查询全部平台的账号连接状态
func (o *Orchestrator) ConnectionStatuses(ctx context.Context) []*platform.AccountStatus {
	adapters := o.registry.All()
	statuses := make([]*platform.AccountStatus, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter platform.Adapter) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()
			statuses[i] = adapter.AccountStatus(callCtx)
		}(i, adapter)
	}
	wg.Wait()
	return statuses
}

// DeleteRemotePost 删除远端已发布内容并清理本地发布记录
func (o *Orchestrator) DeleteRemotePost(ctx context.Context, platformName, postID, actorID string) error {
	adapter, ok := o.registry.Get(platformName)
	if !ok {
		return common.NewBusinessErrorWithCode(common.CodePlatformUnknown)
	}

	record, err := o.content.FindPublishRecord(ctx, platformName, postID)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := adapter.Delete(callCtx, postID); err != nil {
		if err == platform.ErrDeleteUnsupported {
			return common.NewBusinessErrorWithCode(common.CodeDeleteUnsupported)
		}
		return common.NewBusinessError(common.CodeRemoteDeleteFailed, fmt.Sprintf("远端删除失败: %v", err))
	}

	if err := o.content.DeletePublishRecord(ctx, record.ID); err != nil {
		return fmt.Errorf("清理发布记录失败: %w", err)
	}

	if o.activity != nil {
		o.activity.Record(ctx, actorID, activity.ActionRemoteDeleted, activity.EntityContent, record.ContentID, map[string]any{
			"platform": platformName,
			"post_id":  postID,
		})
	}
	return nil
}

// normalizePlatforms 平台名小写、去空白、去重，保持输入顺序
func normalizePlatforms(platforms []string) []string {
	seen := make(map[string]struct{}, len(platforms))
	out := make([]string, 0, len(platforms))
	for _, name := range platforms {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
