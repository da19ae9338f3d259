package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradekeep/internal/common"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Item{}, &PublishRecord{}, &ScheduledPublish{}))
	return NewService(db)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateRequest{
		Title:       "周度市场观察",
		Body:        "本周行情回顾",
		Type:        "post",
		BrandPillar: "market-insight",
		Platforms:   []string{"twitter", "linkedin"},
	}, "author-1")
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	assert.Equal(t, StatusDraft, item.Status)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, []string{"twitter", "linkedin"}, []string(got.Platforms))

	_, err = svc.Get(ctx, "no-such-id")
	var bizErr *common.BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, common.CodeContentNotFound, bizErr.Code)
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateRequest{Title: "原标题", Body: "原正文"}, "author-1")
	require.NoError(t, err)

	newTitle := "新标题"
	updated, err := svc.Update(ctx, item.ID, &UpdateRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "新标题", updated.Title)
	assert.Equal(t, "原正文", updated.Body)
}

func TestListWithFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"市场周报", "交易心理入门", "产品更新速递"} {
		_, err := svc.Create(ctx, &CreateRequest{Title: title}, "author-1")
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, &ListRequest{Keyword: "市场"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "市场周报", items[0].Title)

	_, total, err = svc.List(ctx, &ListRequest{Status: string(StatusDraft)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestUpdateStatusAndMarkPublished(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateRequest{Title: "待发布"}, "author-1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, item.ID, StatusApproved))

	publishedAt := time.Now()
	require.NoError(t, svc.MarkPublished(ctx, item.ID, StatusPublished, publishedAt))

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)

	err = svc.UpdateStatus(ctx, "no-such-id", StatusArchived)
	var bizErr *common.BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, common.CodeContentNotFound, bizErr.Code)
}

func TestPublishRecords(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &CreateRequest{Title: "已发布"}, "author-1")
	require.NoError(t, err)

	record := &PublishRecord{
		ContentID:   item.ID,
		Platform:    "twitter",
		PostID:      "post-1",
		URL:         "https://twitter.example/post-1",
		PublishedAt: time.Now(),
	}
	require.NoError(t, svc.DB.Create(record).Error)

	records, err := svc.ListPublishRecords(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	found, err := svc.FindPublishRecord(ctx, "twitter", "post-1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)

	require.NoError(t, svc.DeletePublishRecord(ctx, found.ID))

	_, err = svc.FindPublishRecord(ctx, "twitter", "post-1")
	var bizErr *common.BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, common.CodePostRecordNotFound, bizErr.Code)
}
