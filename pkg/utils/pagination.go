package utils

import "gorm.io/gorm"

// NormalizePage 规范化分页参数
func NormalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// Paginate GORM 分页 Scope
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page, limit := NormalizePage(page, limit)
		offset := (page - 1) * limit
		return db.Offset(offset).Limit(limit)
	}
}
