package tasks

// 任务类型定义
const (
	// TypeScheduledPublish 定时发布任务（Redis 持久化，重启后不丢失）
	TypeScheduledPublish = "publishing:scheduled"
)

// ScheduledPublishPayload 定时发布任务载荷
// 只携带计划ID，平台列表和发布选项以执行时数据库中的记录为准
type ScheduledPublishPayload struct {
	ScheduleID string `json:"schedule_id"`
}
