package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"tradekeep/internal/config"
	"tradekeep/internal/worker/tasks"

	"github.com/hibiken/asynq"
)

// Client 任务队列客户端接口
type Client interface {
	EnqueueScheduledPublish(scheduleID string, processAt time.Time) error
	Close() error
}

type asynqClient struct {
	client *asynq.Client
}

// NewClient 创建任务队列客户端
func NewClient(cfg config.RedisConfig) Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &asynqClient{client: client}
}

// EnqueueScheduledPublish 入队定时发布任务，到点后由 worker 执行
// TaskID 绑定计划ID，同一计划重复入队时去重
func (c *asynqClient) EnqueueScheduledPublish(scheduleID string, processAt time.Time) error {
	payload, err := json.Marshal(tasks.ScheduledPublishPayload{ScheduleID: scheduleID})
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	task := asynq.NewTask(tasks.TypeScheduledPublish, payload)

	_, err = c.client.Enqueue(task,
		asynq.ProcessAt(processAt),
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("publishing"),
		asynq.TaskID("scheduled-publish:"+scheduleID),
	)
	if err != nil {
		return fmt.Errorf("enqueue task failed: %w", err)
	}

	return nil
}

func (c *asynqClient) Close() error {
	return c.client.Close()
}
