package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 发布管线与工作流引擎指标
var (
	// PublishAttempts 各平台发布尝试计数，result ∈ success/failed/skipped/mock
	PublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradekeep",
		Subsystem: "publishing",
		Name:      "platform_attempts_total",
		Help:      "各平台发布尝试次数",
	}, []string{"platform", "result"})

	// PublishDuration 单平台发布耗时
	PublishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tradekeep",
		Subsystem: "publishing",
		Name:      "platform_duration_seconds",
		Help:      "单平台发布耗时（秒）",
		Buckets:   prometheus.DefBuckets,
	}, []string{"platform"})

	// ScheduledPublishFired 定时发布任务执行计数，result ∈ done/failed/stale
	ScheduledPublishFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradekeep",
		Subsystem: "publishing",
		Name:      "scheduled_fired_total",
		Help:      "定时发布任务执行次数",
	}, []string{"result"})

	// WorkflowTransitions 工作流状态流转计数，action ∈ started/advanced/completed/rejected/conflict
	WorkflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradekeep",
		Subsystem: "workflow",
		Name:      "transitions_total",
		Help:      "工作流实例状态流转次数",
	}, []string{"action"})

	// NotificationsSent 通知发送计数，channel ∈ inapp/email
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradekeep",
		Subsystem: "notification",
		Name:      "sent_total",
		Help:      "通知发送次数",
	}, []string{"channel"})
)
