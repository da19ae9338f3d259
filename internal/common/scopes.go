package common

import "gorm.io/gorm"

// ByStatus 按状态过滤
// 使用方法：db.Scopes(common.ByStatus("in_progress")).Find(&instances)
func ByStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	}
}

// ByContent 按内容ID过滤
// 使用方法：db.Scopes(common.ByContent(contentID)).Find(&records)
func ByContent(contentID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_id = ?", contentID)
	}
}

// ActiveOnly 仅查询活跃记录
// 使用方法：db.Scopes(common.ActiveOnly()).Find(&users)
func ActiveOnly() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("active = ?", true)
	}
}

// UnreadOnly 仅查询未读记录
// 使用方法：db.Scopes(common.UnreadOnly()).Find(&notifications)
func UnreadOnly() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("read_at IS NULL")
	}
}
