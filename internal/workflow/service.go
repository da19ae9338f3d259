package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradekeep/internal/activity"
	"tradekeep/internal/common"
	"tradekeep/internal/content"
	"tradekeep/internal/metrics"
	"tradekeep/internal/notification"

	"github.com/Knetic/govaluate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentPublisher 终审通过后的自动发布入口
type ContentPublisher interface {
	AutoPublish(ctx context.Context, contentID string) error
}

// Engine 工作流引擎
// 所有阶段推进都是条件更新（WHERE current_stage = ? AND status = 'in_progress'），
// 并发审批只有一个能生效，其余返回冲突
type Engine struct {
	db        *gorm.DB
	content   *content.Service
	notifier  *notification.Service
	publisher ContentPublisher
	activity  *activity.Service
	logger    *zap.Logger
}

// EngineOption 引擎配置选项
type EngineOption func(*Engine)

// WithNotifier 接入通知服务
func WithNotifier(n *notification.Service) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithPublisher 接入自动发布
func WithPublisher(p ContentPublisher) EngineOption {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithActivity 接入操作流水
func WithActivity(a *activity.Service) EngineOption {
	return func(e *Engine) {
		e.activity = a
	}
}

// WithEngineLogger 设置日志器
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine 创建工作流引擎
func NewEngine(db *gorm.DB, contentSvc *content.Service, opts ...EngineOption) *Engine {
	e := &Engine{
		db:      db,
		content: contentSvc,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ============================================================================
// 模板管理
// ============================================================================

var validStageTypes = map[StageType]struct{}{
	StageApproval:     {},
	StageTask:         {},
	StageNotification: {},
	StageAuto:         {},
}

var validTemplateTypes = map[TemplateType]struct{}{
	TemplateContentApproval: {},
	TemplateTaskSequence:    {},
	TemplateCustom:          {},
}

// CreateTemplate 创建工作流模板
// 阶段顺序由输入数组位置决定，0 起连续编号
func (e *Engine) CreateTemplate(ctx context.Context, req *CreateTemplateRequest, createdBy string) (*Template, error) {
	if _, ok := validTemplateTypes[req.Type]; !ok {
		return nil, common.NewBusinessError(common.CodeTemplateInvalid, fmt.Sprintf("未知的模板类型: %s", req.Type))
	}
	stages, err := buildStages(req.Stages)
	if err != nil {
		return nil, err
	}

	template := &Template{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Stages:      stages,
		CreatedBy:   createdBy,
	}
	if err := e.db.WithContext(ctx).Create(template).Error; err != nil {
		return nil, fmt.Errorf("创建模板失败: %w", err)
	}
	return e.GetTemplate(ctx, template.ID)
}

// UpdateTemplateStages 整体替换模板的阶段定义
// 模板已有实例时拒绝修改：运行中的实例按阶段下标寻址，改动会破坏其语义
func (e *Engine) UpdateTemplateStages(ctx context.Context, templateID string, inputs []StageInput) (*Template, error) {
	if _, err := e.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	var instanceCount int64
	if err := e.db.WithContext(ctx).Model(&Instance{}).
		Where("template_id = ?", templateID).
		Count(&instanceCount).Error; err != nil {
		return nil, fmt.Errorf("统计模板实例失败: %w", err)
	}
	if instanceCount > 0 {
		return nil, common.NewBusinessErrorWithCode(common.CodeTemplateInUse)
	}

	stages, err := buildStages(inputs)
	if err != nil {
		return nil, err
	}
	for i := range stages {
		stages[i].TemplateID = templateID
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&Stage{}).Error; err != nil {
			return err
		}
		if len(stages) == 0 {
			return nil
		}
		return tx.Create(&stages).Error
	})
	if err != nil {
		return nil, fmt.Errorf("更新模板阶段失败: %w", err)
	}
	return e.GetTemplate(ctx, templateID)
}

// GetTemplate 获取模板（含有序阶段）
func (e *Engine) GetTemplate(ctx context.Context, id string) (*Template, error) {
	var template Template
	err := e.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		Where("id = ?", id).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodeTemplateNotFound)
		}
		return nil, fmt.Errorf("查询模板失败: %w", err)
	}
	return &template, nil
}

// ListTemplates 模板列表
func (e *Engine) ListTemplates(ctx context.Context, page common.PaginationRequest) ([]Template, int64, error) {
	var total int64
	if err := e.db.WithContext(ctx).Model(&Template{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计模板失败: %w", err)
	}

	var templates []Template
	err := e.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		Order("created_at DESC").
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Find(&templates).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询模板列表失败: %w", err)
	}
	return templates, total, nil
}

func buildStages(inputs []StageInput) ([]Stage, error) {
	stages := make([]Stage, 0, len(inputs))
	for i, input := range inputs {
		if _, ok := validStageTypes[input.Type]; !ok {
			return nil, common.NewBusinessError(common.CodeTemplateInvalid, fmt.Sprintf("第 %d 个阶段类型无效: %s", i, input.Type))
		}
		stages = append(stages, Stage{
			Name:         input.Name,
			StageOrder:   i,
			Type:         input.Type,
			AssigneeID:   input.AssigneeID,
			AssigneeRole: input.AssigneeRole,
			Config:       input.Config,
		})
	}
	return stages, nil
}

// ============================================================================
// 实例生命周期
// ============================================================================

// Start 启动工作流实例
// 零阶段模板立即完成并触发自动发布；否则进入第 0 阶段
func (e *Engine) Start(ctx context.Context, req *StartRequest, startedBy string) (*Instance, error) {
	template, err := e.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		TemplateID:   template.ID,
		ContentID:    req.ContentID,
		CurrentStage: 0,
		Status:       InstanceInProgress,
		StartedBy:    startedBy,
		StartedAt:    time.Now(),
	}
	if err := e.db.WithContext(ctx).Create(inst).Error; err != nil {
		return nil, fmt.Errorf("创建工作流实例失败: %w", err)
	}
	metrics.WorkflowTransitions.WithLabelValues("started").Inc()

	if inst.ContentID != "" {
		if err := e.content.UpdateStatus(ctx, inst.ContentID, content.StatusReview); err != nil {
			e.logger.Warn("更新内容状态失败", zap.String("content_id", inst.ContentID), zap.Error(err))
		}
	}
	if e.activity != nil {
		e.activity.Record(ctx, startedBy, activity.ActionWorkflowStarted, activity.EntityInstance, inst.ID, map[string]any{
			"template_id": template.ID,
			"content_id":  inst.ContentID,
		})
	}

	if len(template.Stages) == 0 {
		if err := e.complete(ctx, inst, startedBy); err != nil {
			return nil, err
		}
		return e.GetInstance(ctx, inst.ID)
	}

	if err := e.runCurrentStage(ctx, inst, template.Stages); err != nil {
		return nil, err
	}
	return e.GetInstance(ctx, inst.ID)
}

// GetInstance 获取实例
func (e *Engine) GetInstance(ctx context.Context, id string) (*Instance, error) {
	var inst Instance
	err := e.db.WithContext(ctx).Where("id = ?", id).First(&inst).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodeInstanceNotFound)
		}
		return nil, fmt.Errorf("查询工作流实例失败: %w", err)
	}
	return &inst, nil
}

// ListApprovals 实例的审批记录
func (e *Engine) ListApprovals(ctx context.Context, instanceID string) ([]ApprovalRecord, error) {
	var records []ApprovalRecord
	err := e.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询审批记录失败: %w", err)
	}
	return records, nil
}

// ============================================================================
// 审批
// ============================================================================

// RecordDecision 提交一次审批决定
// 校验顺序：终态 → 阶段匹配 → 审批人（先ID后角色）→ 重复提交
func (e *Engine) RecordDecision(ctx context.Context, instanceID, userID, userRole string, req *DecisionRequest) (*DecisionResult, error) {
	if req.Action != ActionApproved && req.Action != ActionRejected && req.Action != ActionCompleted {
		return nil, common.NewBusinessError(common.CodeInvalidRequest, fmt.Sprintf("未知的审批动作: %s", req.Action))
	}

	inst, err := e.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.IsTerminal() {
		return nil, common.NewBusinessErrorWithCode(common.CodeInstanceTerminal)
	}

	stages, err := e.loadStages(ctx, inst.TemplateID)
	if err != nil {
		return nil, err
	}
	if inst.CurrentStage < 0 || inst.CurrentStage >= len(stages) {
		return nil, fmt.Errorf("实例阶段下标越界: %d", inst.CurrentStage)
	}

	stage := stages[inst.CurrentStage]
	if stage.ID != req.StageID {
		return nil, common.NewBusinessErrorWithCode(common.CodeStageMismatch)
	}

	if !authorized(&stage, userID, userRole) {
		return nil, common.NewBusinessErrorWithCode(common.CodeNotStageAssignee)
	}

	var existing int64
	if err := e.db.WithContext(ctx).Model(&ApprovalRecord{}).
		Where("instance_id = ? AND stage_id = ? AND user_id = ?", inst.ID, stage.ID, userID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("查询审批记录失败: %w", err)
	}
	if existing > 0 {
		return nil, common.NewBusinessErrorWithCode(common.CodeDuplicateDecision)
	}

	record := &ApprovalRecord{
		InstanceID: inst.ID,
		StageID:    stage.ID,
		UserID:     userID,
		Action:     req.Action,
		Comments:   req.Comments,
	}
	if err := e.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("写入审批记录失败: %w", err)
	}

	if req.Action == ActionRejected {
		if err := e.reject(ctx, inst, &stage, userID); err != nil {
			return nil, err
		}
	} else {
		if err := e.advance(ctx, inst, stages, userID); err != nil {
			return nil, err
		}
	}

	updated, err := e.GetInstance(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	return &DecisionResult{Approval: record, Instance: updated}, nil
}

// authorized 审批人校验：先比对指派用户ID，再回落到指派角色
// 两者都未设置的阶段对任何已认证用户开放
func authorized(stage *Stage, userID, userRole string) bool {
	if stage.AssigneeID != "" && stage.AssigneeID == userID {
		return true
	}
	if stage.AssigneeRole != "" && stage.AssigneeRole == userRole {
		return true
	}
	return stage.AssigneeID == "" && stage.AssigneeRole == ""
}

// casTransition 条件更新实例
// RowsAffected == 0 说明其他审批已先一步推进，返回冲突
func (e *Engine) casTransition(ctx context.Context, instanceID string, fromStage int, updates map[string]any) error {
	result := e.db.WithContext(ctx).Model(&Instance{}).
		Where("id = ? AND current_stage = ? AND status = ?", instanceID, fromStage, InstanceInProgress).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("更新实例状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		metrics.WorkflowTransitions.WithLabelValues("conflict").Inc()
		return common.NewBusinessErrorWithCode(common.CodeStageConflict)
	}
	return nil
}

// reject 实例进入 rejected 终态，内容留待人工处理
func (e *Engine) reject(ctx context.Context, inst *Instance, stage *Stage, userID string) error {
	now := time.Now()
	err := e.casTransition(ctx, inst.ID, inst.CurrentStage, map[string]any{
		"status":       InstanceRejected,
		"completed_at": now,
	})
	if err != nil {
		return err
	}
	metrics.WorkflowTransitions.WithLabelValues("rejected").Inc()

	if inst.ContentID != "" {
		if err := e.content.UpdateStatus(ctx, inst.ContentID, content.StatusDraft); err != nil {
			e.logger.Warn("回退内容状态失败", zap.String("content_id", inst.ContentID), zap.Error(err))
		}
	}

	e.notifyUsers(ctx, []string{inst.StartedBy}, notification.TypeStatusChange,
		fmt.Sprintf("您的审批流在阶段「%s」被驳回", stage.Name), inst)
	if e.activity != nil {
		e.activity.Record(ctx, userID, activity.ActionStageRejected, activity.EntityInstance, inst.ID, map[string]any{
			"stage": stage.Name,
		})
	}
	return nil
}

// advance 当前阶段通过后推进实例
// 最后一个阶段 → 完成并自动发布；否则进入下一阶段并处理自动阶段
func (e *Engine) advance(ctx context.Context, inst *Instance, stages []Stage, userID string) error {
	stage := stages[inst.CurrentStage]

	if inst.CurrentStage == len(stages)-1 {
		if err := e.complete(ctx, inst, userID); err != nil {
			return err
		}
	} else {
		next := inst.CurrentStage + 1
		if err := e.casTransition(ctx, inst.ID, inst.CurrentStage, map[string]any{
			"current_stage": next,
		}); err != nil {
			return err
		}
		metrics.WorkflowTransitions.WithLabelValues("advanced").Inc()
		inst.CurrentStage = next

		if err := e.runCurrentStage(ctx, inst, stages); err != nil {
			return err
		}
	}

	if e.activity != nil {
		e.activity.Record(ctx, userID, activity.ActionStageApproved, activity.EntityInstance, inst.ID, map[string]any{
			"stage": stage.Name,
		})
	}
	return nil
}

// complete 实例进入 completed 终态并触发自动发布
func (e *Engine) complete(ctx context.Context, inst *Instance, userID string) error {
	now := time.Now()
	err := e.casTransition(ctx, inst.ID, inst.CurrentStage, map[string]any{
		"status":       InstanceCompleted,
		"completed_at": now,
	})
	if err != nil {
		return err
	}
	metrics.WorkflowTransitions.WithLabelValues("completed").Inc()
	inst.Status = InstanceCompleted

	if inst.ContentID != "" {
		if err := e.content.UpdateStatus(ctx, inst.ContentID, content.StatusApproved); err != nil {
			e.logger.Warn("更新内容状态失败", zap.String("content_id", inst.ContentID), zap.Error(err))
		}

		// 自动发布失败不影响审批结果，发布可以手动重试
		if e.publisher != nil {
			if err := e.publisher.AutoPublish(ctx, inst.ContentID); err != nil {
				e.logger.Warn("终审通过后自动发布失败",
					zap.String("instance_id", inst.ID),
					zap.String("content_id", inst.ContentID),
					zap.Error(err),
				)
			}
		}
	}

	e.notifyUsers(ctx, []string{inst.StartedBy}, notification.TypeStatusChange, "您的审批流已全部通过", inst)
	if e.activity != nil {
		e.activity.Record(ctx, userID, activity.ActionWorkflowCompleted, activity.EntityInstance, inst.ID, nil)
	}
	return nil
}

// runCurrentStage 处理进入新阶段后的动作
// approval/task 阶段通知审批人后等待；notification 阶段通知后自动推进；
// auto 阶段求值条件，为真自动推进，为假停在原地等待人工处理
func (e *Engine) runCurrentStage(ctx context.Context, inst *Instance, stages []Stage) error {
	for inst.CurrentStage < len(stages) {
		stage := stages[inst.CurrentStage]

		switch stage.Type {
		case StageApproval, StageTask:
			e.notifyStageAssignees(ctx, inst, &stage, notification.TypeApprovalRequest)
			return nil

		case StageNotification:
			e.notifyStageAssignees(ctx, inst, &stage, notification.TypeAssignment)
			if err := e.autoAdvance(ctx, inst, stages, &stage); err != nil {
				return err
			}

		case StageAuto:
			ok, err := e.evaluateAutoStage(ctx, inst, &stage)
			if err != nil {
				return err
			}
			if !ok {
				// 条件不满足：停留在本阶段，交给审批人处理
				e.notifyStageAssignees(ctx, inst, &stage, notification.TypeApprovalRequest)
				return nil
			}
			if err := e.autoAdvance(ctx, inst, stages, &stage); err != nil {
				return err
			}

		default:
			return common.NewBusinessError(common.CodeStageConfigInvalid, fmt.Sprintf("未知的阶段类型: %s", stage.Type))
		}
	}
	return nil
}

// autoAdvance 系统代为通过当前阶段并推进
func (e *Engine) autoAdvance(ctx context.Context, inst *Instance, stages []Stage, stage *Stage) error {
	record := &ApprovalRecord{
		InstanceID: inst.ID,
		StageID:    stage.ID,
		UserID:     SystemUserID,
		Action:     ActionCompleted,
		Comments:   "系统自动推进",
	}
	if err := e.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("写入系统审批记录失败: %w", err)
	}

	if inst.CurrentStage == len(stages)-1 {
		if err := e.complete(ctx, inst, SystemUserID); err != nil {
			return err
		}
		inst.CurrentStage = len(stages)
		return nil
	}

	next := inst.CurrentStage + 1
	if err := e.casTransition(ctx, inst.ID, inst.CurrentStage, map[string]any{
		"current_stage": next,
	}); err != nil {
		return err
	}
	metrics.WorkflowTransitions.WithLabelValues("advanced").Inc()
	inst.CurrentStage = next
	return nil
}

// evaluateAutoStage 求值 auto 阶段的推进条件
// 条件缺失视为恒真；求值出错按不满足处理并记日志，避免卡死整条流程
func (e *Engine) evaluateAutoStage(ctx context.Context, inst *Instance, stage *Stage) (bool, error) {
	cond, _ := stage.Config["condition"].(string)
	if cond == "" {
		return true, nil
	}

	expr, err := govaluate.NewEvaluableExpression(cond)
	if err != nil {
		return false, common.NewBusinessError(common.CodeStageConfigInvalid, fmt.Sprintf("阶段条件表达式无效: %v", err))
	}

	params := map[string]any{}
	if inst.ContentID != "" {
		if item, err := e.content.Get(ctx, inst.ContentID); err == nil {
			params["title_length"] = float64(len([]rune(item.Title)))
			params["body_length"] = float64(len([]rune(item.Body)))
			params["media_count"] = float64(len(item.MediaURLs))
			params["platform_count"] = float64(len(item.Platforms))
			params["brand_pillar"] = item.BrandPillar
			params["content_type"] = item.Type
		}
	}
	if extra, ok := stage.Config["params"].(map[string]any); ok {
		for k, v := range extra {
			params[k] = v
		}
	}

	result, err := expr.Evaluate(params)
	if err != nil {
		e.logger.Warn("阶段条件求值失败",
			zap.String("instance_id", inst.ID),
			zap.String("condition", cond),
			zap.Error(err),
		)
		return false, nil
	}

	pass, ok := result.(bool)
	return ok && pass, nil
}

// ============================================================================
// 待办
// ============================================================================

// ListPending 用户待办列表
// 当前阶段按用户ID或角色匹配，未指定任何负责人的开放阶段对所有人可见；
// 已提交过意见的阶段不再出现
func (e *Engine) ListPending(ctx context.Context, userID, userRole string) ([]PendingItem, error) {
	var instances []Instance
	err := e.db.WithContext(ctx).
		Where("status = ?", InstanceInProgress).
		Where(`EXISTS (
			SELECT 1 FROM workflow_stages ws
			WHERE ws.template_id = workflow_instances.template_id
			  AND ws.stage_order = workflow_instances.current_stage
			  AND (ws.assignee_id = @uid
				OR (ws.assignee_role <> '' AND ws.assignee_role = @role)
				OR (ws.assignee_id = '' AND ws.assignee_role = ''))
			  AND NOT EXISTS (
				SELECT 1 FROM workflow_approvals wa
				WHERE wa.instance_id = workflow_instances.id
				  AND wa.stage_id = ws.id
				  AND wa.user_id = @uid
			  )
		)`, map[string]any{"uid": userID, "role": userRole}).
		Order("started_at ASC").
		Find(&instances).Error
	if err != nil {
		return nil, fmt.Errorf("查询待办失败: %w", err)
	}

	items := make([]PendingItem, 0, len(instances))
	for _, inst := range instances {
		var stage Stage
		err := e.db.WithContext(ctx).
			Where("template_id = ? AND stage_order = ?", inst.TemplateID, inst.CurrentStage).
			First(&stage).Error
		if err != nil {
			e.logger.Warn("待办阶段缺失",
				zap.String("instance_id", inst.ID),
				zap.Int("stage_order", inst.CurrentStage),
				zap.Error(err),
			)
			continue
		}
		items = append(items, PendingItem{
			Instance:  inst,
			Stage:     stage,
			ContentID: inst.ContentID,
		})
	}
	return items, nil
}

// ============================================================================
// 内部工具
// ============================================================================

func (e *Engine) loadStages(ctx context.Context, templateID string) ([]Stage, error) {
	var stages []Stage
	err := e.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("stage_order ASC").
		Find(&stages).Error
	if err != nil {
		return nil, fmt.Errorf("查询模板阶段失败: %w", err)
	}
	return stages, nil
}

// notifyStageAssignees 通知阶段的审批人
// 按角色指派时在通知发出前实时解析角色成员
func (e *Engine) notifyStageAssignees(ctx context.Context, inst *Instance, stage *Stage, typ notification.Type) {
	if e.notifier == nil {
		return
	}

	message := fmt.Sprintf("阶段「%s」等待您处理", stage.Name)
	if inst.ContentID != "" {
		if item, err := e.content.Get(ctx, inst.ContentID); err == nil {
			message = fmt.Sprintf("内容《%s》的阶段「%s」等待您处理", item.Title, stage.Name)
		}
	}

	var err error
	switch {
	case stage.AssigneeID != "":
		err = e.notifier.Notify(ctx, []string{stage.AssigneeID}, typ, message, "workflow_instance", inst.ID)
	case stage.AssigneeRole != "":
		err = e.notifier.NotifyRole(ctx, stage.AssigneeRole, typ, message, "workflow_instance", inst.ID)
	}
	if err != nil {
		e.logger.Warn("阶段通知发送失败",
			zap.String("instance_id", inst.ID),
			zap.String("stage", stage.Name),
			zap.Error(err),
		)
	}
}

func (e *Engine) notifyUsers(ctx context.Context, userIDs []string, typ notification.Type, message string, inst *Instance) {
	if e.notifier == nil || len(userIDs) == 0 {
		return
	}
	if err := e.notifier.Notify(ctx, userIDs, typ, message, "workflow_instance", inst.ID); err != nil {
		e.logger.Warn("通知发送失败", zap.String("instance_id", inst.ID), zap.Error(err))
	}
}
