package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

// IsMissingColumn reports whether err says the table is missing a column.
func IsMissingColumn(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "has no column named") ||
		strings.Contains(msg, "unknown column") {
		return true
	}
	return strings.Contains(msg, "column ") && strings.Contains(msg, "does not exist")
}

// IsDuplicateKey reports unique violations, translated or not.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}

// IsForeignKeyViolation reports foreign key violations, translated or not.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

// WithSchemaRetry runs op and, when the store reports a missing column,
// migrates model once and runs op again. Any other error is returned as is.
func WithSchemaRetry(db *gorm.DB, model any, op func() error) error {
	err := op()
	if !IsMissingColumn(err) {
		return err
	}

	slog.Warn("schema drift detected, migrating and retrying", "error", err)
	if migrateErr := db.AutoMigrate(model); migrateErr != nil {
		return fmt.Errorf("%w (auto-migrate failed: %v)", err, migrateErr)
	}

	return op()
}
