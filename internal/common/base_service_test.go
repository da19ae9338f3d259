package common

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// baseTestModel 测试用的模型
type baseTestModel struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:255"`
	Body      string `gorm:"size:1024"`
	Status    string `gorm:"size:50"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func setupBaseTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&baseTestModel{}))
	return db
}

func seedBaseTestData(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []baseTestModel{
		{Title: "周报 1", Body: "market recap", Status: "draft"},
		{Title: "周报 2", Body: "earnings note", Status: "review"},
		{Title: "教程 1", Body: "options basics", Status: "approved"},
		{Title: "教程 2", Body: "risk management", Status: "published"},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestApplyPagination(t *testing.T) {
	db := setupBaseTestDB(t)
	seedBaseTestData(t, db)
	service := NewBaseService(db)

	tests := []struct {
		name        string
		page        int
		pageSize    int
		expectCount int
	}{
		{"Page 1, size 2", 1, 2, 2},
		{"Page 2, size 2", 2, 2, 2},
		{"Page 3, size 2", 3, 2, 0},
		{"Invalid page falls back", 0, 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := service.ApplyPagination(db.Model(&baseTestModel{}), tt.page, tt.pageSize)

			var rows []baseTestModel
			err := query.Find(&rows).Error
			assert.NoError(t, err)
			assert.Equal(t, tt.expectCount, len(rows))
		})
	}
}

func TestApplySorting(t *testing.T) {
	db := setupBaseTestDB(t)
	seedBaseTestData(t, db)
	service := NewBaseService(db)

	tests := []struct {
		name          string
		sortBy        string
		sortOrder     string
		allowedFields []string
		expectFirst   string
	}{
		{"Sort by title ASC", "title", "asc", []string{"title", "status"}, "周报 1"},
		{"Sort by title DESC", "title", "desc", []string{"title", "status"}, "教程 2"},
		{"Disallowed field falls back", "body; DROP TABLE", "asc", []string{"title"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := service.ApplySorting(db.Model(&baseTestModel{}), tt.sortBy, tt.sortOrder, tt.allowedFields)

			var rows []baseTestModel
			err := query.Find(&rows).Error
			assert.NoError(t, err)

			if tt.expectFirst != "" && len(rows) > 0 {
				assert.Equal(t, tt.expectFirst, rows[0].Title)
			}
		})
	}
}

func TestApplyKeywordSearch(t *testing.T) {
	db := setupBaseTestDB(t)
	seedBaseTestData(t, db)
	service := NewBaseService(db)

	query := service.ApplyKeywordSearch(db.Model(&baseTestModel{}), "教程", []string{"title", "body"})

	var rows []baseTestModel
	require.NoError(t, query.Find(&rows).Error)
	assert.Len(t, rows, 2)
}

func TestApplyStatusFilter(t *testing.T) {
	db := setupBaseTestDB(t)
	seedBaseTestData(t, db)
	service := NewBaseService(db)

	query := service.ApplyStatusFilter(db.Model(&baseTestModel{}), "review")

	var count int64
	require.NoError(t, query.Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 空状态不过滤
	query = service.ApplyStatusFilter(db.Model(&baseTestModel{}), "")
	require.NoError(t, query.Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestBaseCRUD(t *testing.T) {
	db := setupBaseTestDB(t)
	service := NewBaseService(db)
	ctx := context.Background()

	row := &baseTestModel{Title: "新建内容", Status: "draft"}
	require.NoError(t, service.Create(ctx, row))
	assert.NotZero(t, row.ID)

	row.Title = "更新后的内容"
	require.NoError(t, service.Update(ctx, row))

	var loaded baseTestModel
	require.NoError(t, db.First(&loaded, row.ID).Error)
	assert.Equal(t, "更新后的内容", loaded.Title)

	exists, err := service.Exists(ctx, &baseTestModel{}, "status = ?", "draft")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, service.Delete(ctx, row))
	err = db.First(&baseTestModel{}, row.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBaseTransactionRollback(t *testing.T) {
	db := setupBaseTestDB(t)
	service := NewBaseService(db)
	ctx := context.Background()

	err := service.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&baseTestModel{Title: "回滚内容", Status: "draft"}).Error; err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&baseTestModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
