package publishing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tradekeep/internal/common"
	"tradekeep/internal/config"
	"tradekeep/internal/content"
	"tradekeep/internal/platform"
	"tradekeep/internal/platform/instagram"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeAdapter 可编程的平台适配器
type fakeAdapter struct {
	name      string
	publishFn func(ctx context.Context, post *platform.Post) *platform.PublishResult
	deleteFn  func(ctx context.Context, postID string) error
}

func (f *fakeAdapter) Name() string {
	return f.name
}

func (f *fakeAdapter) Publish(ctx context.Context, post *platform.Post) *platform.PublishResult {
	return f.publishFn(ctx, post)
}

func (f *fakeAdapter) AccountStatus(ctx context.Context) *platform.AccountStatus {
	return &platform.AccountStatus{Platform: f.name, Connected: true}
}

func (f *fakeAdapter) Delete(ctx context.Context, postID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, postID)
	}
	return platform.ErrDeleteUnsupported
}

func successAdapter(name string) *fakeAdapter {
	return &fakeAdapter{
		name: name,
		publishFn: func(ctx context.Context, post *platform.Post) *platform.PublishResult {
			return &platform.PublishResult{
				Success: true,
				PostID:  name + "-post-1",
				URL:     "https://" + name + ".example/post-1",
			}
		},
	}
}

func failingAdapter(name, msg string) *fakeAdapter {
	return &fakeAdapter{
		name: name,
		publishFn: func(ctx context.Context, post *platform.Post) *platform.PublishResult {
			return &platform.PublishResult{Success: false, Error: msg}
		},
	}
}

func panickingAdapter(name string) *fakeAdapter {
	return &fakeAdapter{
		name: name,
		publishFn: func(ctx context.Context, post *platform.Post) *platform.PublishResult {
			panic("适配器内部越界")
		},
	}
}

// fakeQueue 记录入队调用
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []string
	failWith error
}

func (q *fakeQueue) EnqueueScheduledPublish(scheduleID string, processAt time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return q.failWith
	}
	q.enqueued = append(q.enqueued, scheduleID)
	return nil
}

func (q *fakeQueue) Close() error {
	return nil
}

type orchestratorFixture struct {
	db       *gorm.DB
	content  *content.Service
	registry *platform.Registry
	queue    *fakeQueue
	clock    time.Time
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&content.Item{}, &content.PublishRecord{}, &content.ScheduledPublish{},
	))

	return &orchestratorFixture{
		db:       db,
		content:  content.NewService(db),
		registry: platform.NewRegistry(),
		queue:    &fakeQueue{},
		clock:    time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func (f *orchestratorFixture) orchestrator(opts ...OrchestratorOption) *Orchestrator {
	base := []OrchestratorOption{
		WithQueue(f.queue),
		WithPlatformTimeout(5 * time.Second),
		withClock(func() time.Time { return f.clock }),
	}
	return NewOrchestrator(f.db, f.content, f.registry, append(base, opts...)...)
}

func (f *orchestratorFixture) createContent(t *testing.T, platforms, mediaURLs []string) *content.Item {
	t.Helper()
	item, err := f.content.Create(context.Background(), &content.CreateRequest{
		Title:       "周度市场观察",
		Body:        "本周市场震荡整理，关注关键支撑位。",
		Type:        "post",
		BrandPillar: "market-insight",
		Platforms:   platforms,
		MediaURLs:   mediaURLs,
	}, "author-1")
	require.NoError(t, err)
	require.NoError(t, f.content.UpdateStatus(context.Background(), item.ID, content.StatusApproved))
	return item
}

// 单平台失败与 panic 都不影响其他平台的发布
func TestPublishIsolatesPlatformFailures(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	f.registry.Register(failingAdapter("linkedin", "远端 500"))
	f.registry.Register(panickingAdapter("email"))

	item := f.createContent(t, []string{"twitter", "linkedin", "email"}, nil)
	o := f.orchestrator()

	result, err := o.Publish(context.Background(), item.ID, nil, FormatOptions{}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.True(t, result.Outcomes["twitter"].Success)
	assert.Equal(t, "远端 500", result.Outcomes["linkedin"].Error)
	assert.Contains(t, result.Outcomes["email"].Error, "适配器异常")

	// 至少一个成功：内容进入部分发布状态，只为成功平台落发布记录
	updated, err := f.content.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusPartiallyPublished, updated.Status)
	require.NotNil(t, updated.PublishedAt)

	records, err := f.content.ListPublishRecords(context.Background(), item.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "twitter", records[0].Platform)
	assert.Equal(t, "twitter-post-1", records[0].PostID)
}

func TestPublishUnknownPlatformSkipped(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))

	item := f.createContent(t, []string{"twitter", "myspace"}, nil)
	o := f.orchestrator()

	result, err := o.Publish(context.Background(), item.ID, nil, FormatOptions{}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, result.Outcomes["myspace"].Skipped)

	// 跳过不计入失败，全部有效平台成功即视为完整发布
	updated, err := f.content.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusPublished, updated.Status)
}

// 无图内容发到 Instagram：媒体校验先于凭证检查，失败信息确定且不发起网络调用
func TestPublishInstagramRequiresMedia(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	f.registry.Register(instagram.NewClient(config.InstagramConfig{}, false, 5*time.Second))

	item := f.createContent(t, []string{"twitter", "instagram"}, nil)
	o := f.orchestrator()

	result, err := o.Publish(context.Background(), item.ID, nil, FormatOptions{}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.Contains(t, result.Outcomes["instagram"].Error, "图片")

	updated, err := f.content.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusPartiallyPublished, updated.Status)
}

func TestPublishRequiresValidPlatform(t *testing.T) {
	f := newOrchestratorFixture(t)
	item := f.createContent(t, nil, nil)
	o := f.orchestrator()

	_, err := o.Publish(context.Background(), item.ID, nil, FormatOptions{}, "user-1")
	requireOrchestratorCode(t, err, common.CodeNoValidPlatform)

	_, err = o.Publish(context.Background(), item.ID, []string{"  ", ""}, FormatOptions{}, "user-1")
	requireOrchestratorCode(t, err, common.CodeNoValidPlatform)
}

func TestNormalizePlatforms(t *testing.T) {
	out := normalizePlatforms([]string{" Twitter", "LINKEDIN", "twitter", "", "  "})
	assert.Equal(t, []string{"twitter", "linkedin"}, out)
}

// 过去的计划时间直接拒绝，且不产生任何落库与入队
func TestScheduleRejectsPastTime(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	item := f.createContent(t, []string{"twitter"}, nil)
	o := f.orchestrator()

	for _, at := range []time.Time{
		f.clock.Add(-time.Hour),
		f.clock, // 等于当前时间也不行，必须严格晚于
	} {
		_, err := o.Schedule(context.Background(), item.ID, nil, at, FormatOptions{}, "user-1")
		requireOrchestratorCode(t, err, common.CodeScheduleInPast)
	}

	var count int64
	require.NoError(t, f.db.Model(&content.ScheduledPublish{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.queue.enqueued)

	updated, err := f.content.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusApproved, updated.Status)
}

func TestScheduleHappyPath(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	item := f.createContent(t, []string{"twitter"}, nil)
	o := f.orchestrator()

	at := f.clock.Add(2 * time.Hour)
	schedule, err := o.Schedule(context.Background(), item.ID, nil, at, FormatOptions{SuppressHashtags: true}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, content.ScheduleStatusPending, schedule.Status)
	assert.Equal(t, []string{"twitter"}, []string(schedule.Platforms))
	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, schedule.ID, f.queue.enqueued[0])

	updated, err := f.content.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusScheduled, updated.Status)
	require.NotNil(t, updated.ScheduledAt)
}

func TestScheduleRollsBackOnEnqueueFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	item := f.createContent(t, []string{"twitter"}, nil)

	f.queue.failWith = errors.New("redis 连接拒绝")
	o := f.orchestrator()

	_, err := o.Schedule(context.Background(), item.ID, nil, f.clock.Add(time.Hour), FormatOptions{}, "user-1")
	require.Error(t, err)

	var count int64
	require.NoError(t, f.db.Model(&content.ScheduledPublish{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCancelSchedule(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	item := f.createContent(t, []string{"twitter"}, nil)
	o := f.orchestrator()

	schedule, err := o.Schedule(context.Background(), item.ID, nil, f.clock.Add(time.Hour), FormatOptions{}, "user-1")
	require.NoError(t, err)

	require.NoError(t, o.CancelSchedule(context.Background(), schedule.ID, "user-1"))

	var row content.ScheduledPublish
	require.NoError(t, f.db.First(&row, "id = ?", schedule.ID).Error)
	assert.Equal(t, content.ScheduleStatusCanceled, row.Status)

	// 内容从排期回退到审批通过
	updated, err := f.content.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusApproved, updated.Status)
	assert.Nil(t, updated.ScheduledAt)

	// 再取消一次与取消不存在的计划
	err = o.CancelSchedule(context.Background(), schedule.ID, "user-1")
	requireOrchestratorCode(t, err, common.CodeScheduleNotPending)

	err = o.CancelSchedule(context.Background(), "no-such-schedule", "user-1")
	requireOrchestratorCode(t, err, common.CodeScheduleNotFound)
}

// 重复投递的定时任务只会执行一次
func TestExecuteScheduledIsIdempotent(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	item := f.createContent(t, []string{"twitter"}, nil)
	o := f.orchestrator()

	schedule := &content.ScheduledPublish{
		ContentID:   item.ID,
		Platforms:   datatypes.NewJSONSlice([]string{"twitter"}),
		ScheduledAt: f.clock.Add(-time.Minute),
		Status:      content.ScheduleStatusPending,
		CreatedBy:   "user-1",
	}
	require.NoError(t, f.db.Create(schedule).Error)

	require.NoError(t, o.ExecuteScheduled(context.Background(), schedule.ID))

	var row content.ScheduledPublish
	require.NoError(t, f.db.First(&row, "id = ?", schedule.ID).Error)
	assert.Equal(t, content.ScheduleStatusDone, row.Status)
	require.NotNil(t, row.FiredAt)

	records, err := f.content.ListPublishRecords(context.Background(), item.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// 第二次投递：认领失败，幂等跳过，不产生新发布记录
	require.NoError(t, o.ExecuteScheduled(context.Background(), schedule.ID))
	records, err = f.content.ListPublishRecords(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExecuteScheduledSkipsCanceled(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	item := f.createContent(t, []string{"twitter"}, nil)
	o := f.orchestrator()

	schedule := &content.ScheduledPublish{
		ContentID:   item.ID,
		Platforms:   datatypes.NewJSONSlice([]string{"twitter"}),
		ScheduledAt: f.clock.Add(time.Hour),
		Status:      content.ScheduleStatusCanceled,
		CreatedBy:   "user-1",
	}
	require.NoError(t, f.db.Create(schedule).Error)

	require.NoError(t, o.ExecuteScheduled(context.Background(), schedule.ID))

	var row content.ScheduledPublish
	require.NoError(t, f.db.First(&row, "id = ?", schedule.ID).Error)
	assert.Equal(t, content.ScheduleStatusCanceled, row.Status)

	records, err := f.content.ListPublishRecords(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExecuteScheduledAllPlatformsFailed(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(failingAdapter("twitter", "远端超时"))
	item := f.createContent(t, []string{"twitter"}, nil)
	o := f.orchestrator()

	schedule := &content.ScheduledPublish{
		ContentID:   item.ID,
		Platforms:   datatypes.NewJSONSlice([]string{"twitter"}),
		ScheduledAt: f.clock.Add(-time.Minute),
		Status:      content.ScheduleStatusPending,
		CreatedBy:   "user-1",
	}
	require.NoError(t, f.db.Create(schedule).Error)

	require.NoError(t, o.ExecuteScheduled(context.Background(), schedule.ID))

	var row content.ScheduledPublish
	require.NoError(t, f.db.First(&row, "id = ?", schedule.ID).Error)
	assert.Equal(t, content.ScheduleStatusFailed, row.Status)
	assert.NotEmpty(t, row.Error)
}

// 发布层的确定性错误记入计划行并向队列返回成功，不触发重试
func TestExecuteScheduledRecordsPublishError(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(successAdapter("twitter"))
	o := f.orchestrator()

	schedule := &content.ScheduledPublish{
		ContentID:   "no-such-content",
		Platforms:   datatypes.NewJSONSlice([]string{"twitter"}),
		ScheduledAt: f.clock.Add(-time.Minute),
		Status:      content.ScheduleStatusPending,
		CreatedBy:   "user-1",
	}
	require.NoError(t, f.db.Create(schedule).Error)

	require.NoError(t, o.ExecuteScheduled(context.Background(), schedule.ID))

	var row content.ScheduledPublish
	require.NoError(t, f.db.First(&row, "id = ?", schedule.ID).Error)
	assert.Equal(t, content.ScheduleStatusFailed, row.Status)
	assert.NotEmpty(t, row.Error)

	// 再次投递时计划已不在 pending，幂等跳过
	require.NoError(t, o.ExecuteScheduled(context.Background(), schedule.ID))
}

func TestDeleteRemotePost(t *testing.T) {
	f := newOrchestratorFixture(t)

	deleted := []string{}
	adapter := successAdapter("twitter")
	adapter.deleteFn = func(ctx context.Context, postID string) error {
		deleted = append(deleted, postID)
		return nil
	}
	f.registry.Register(adapter)
	f.registry.Register(&fakeAdapter{name: "instagram", publishFn: successAdapter("instagram").publishFn})

	item := f.createContent(t, []string{"twitter"}, nil)
	o := f.orchestrator()

	_, err := o.Publish(context.Background(), item.ID, nil, FormatOptions{}, "user-1")
	require.NoError(t, err)

	require.NoError(t, o.DeleteRemotePost(context.Background(), "twitter", "twitter-post-1", "user-1"))
	assert.Equal(t, []string{"twitter-post-1"}, deleted)

	records, err := f.content.ListPublishRecords(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	// 本地已无记录
	err = o.DeleteRemotePost(context.Background(), "twitter", "twitter-post-1", "user-1")
	requireOrchestratorCode(t, err, common.CodePostRecordNotFound)

	// 未注册的平台
	err = o.DeleteRemotePost(context.Background(), "myspace", "x", "user-1")
	requireOrchestratorCode(t, err, common.CodePlatformUnknown)
}

func TestDeleteRemotePostUnsupportedPlatform(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.registry.Register(&fakeAdapter{
		name:      "instagram",
		publishFn: successAdapter("instagram").publishFn,
	})

	item := f.createContent(t, []string{"instagram"}, nil)
	o := f.orchestrator()

	_, err := o.Publish(context.Background(), item.ID, nil, FormatOptions{}, "user-1")
	require.NoError(t, err)

	// 适配器不支持删除：返回专属错误码，本地记录保留
	err = o.DeleteRemotePost(context.Background(), "instagram", "instagram-post-1", "user-1")
	requireOrchestratorCode(t, err, common.CodeDeleteUnsupported)

	records, err := f.content.ListPublishRecords(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func requireOrchestratorCode(t *testing.T, err error, code int) {
	t.Helper()
	var bizErr *common.BusinessError
	require.True(t, errors.As(err, &bizErr), "期望业务错误，实际: %v", err)
	assert.Equal(t, code, bizErr.Code)
}
