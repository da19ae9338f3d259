package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"tradekeep/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ScheduledExecutor 定时发布执行器抽象，便于注入 mock
type ScheduledExecutor interface {
	ExecuteScheduled(ctx context.Context, scheduleID string) error
}

type PublishHandler struct {
	executor ScheduledExecutor
	logger   *zap.Logger
}

func NewPublishHandler(executor ScheduledExecutor, logger *zap.Logger) *PublishHandler {
	return &PublishHandler{
		executor: executor,
		logger:   logger,
	}
}

func (h *PublishHandler) HandleScheduledPublish(ctx context.Context, t *asynq.Task) error {
	var p tasks.ScheduledPublishPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}

	h.logger.Info("开始执行定时发布任务", zap.String("schedule_id", p.ScheduleID))

	// 执行器内部通过条件更新认领计划，重复投递会被幂等跳过
	if err := h.executor.ExecuteScheduled(ctx, p.ScheduleID); err != nil {
		h.logger.Error("定时发布执行失败",
			zap.String("schedule_id", p.ScheduleID),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("定时发布任务完成", zap.String("schedule_id", p.ScheduleID))
	return nil
}
