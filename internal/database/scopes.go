package database

import (
	"strings"

	"gorm.io/gorm"
)

// Paginate applies 1-based page/pageSize pagination to a GORM query. A
// non-positive page or pageSize leaves the query unbounded.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// ContainsFold builds the pattern for a `LOWER(column) LIKE ?` search.
func ContainsFold(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
