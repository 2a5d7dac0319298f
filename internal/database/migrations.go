package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
	unique  bool
	where   string
}

// extraIndexes are the indexes gorm tags cannot express portably.
var extraIndexes = []index{
	{table: "tasks", name: "idx_tasks_project_status", columns: "project_id, status"},
	{table: "time_entries", name: "idx_time_entries_user_start", columns: "user_id, start_time"},
	// At most one running timer per user. Partial indexes exist on postgres and sqlite only.
	{table: "time_entries", name: "idx_time_entries_one_active", columns: "user_id", unique: true, where: "is_active = true"},
}

// AddIndexes creates the extra indexes that do not exist yet.
func AddIndexes(db *gorm.DB) error {
	dialect := db.Dialector.Name()

	for _, idx := range extraIndexes {
		if idx.where != "" && dialect == "mysql" {
			slog.Warn("partial index not supported, skipping", "index", idx.name, "dialect", dialect)
			continue
		}

		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		stmt := "CREATE INDEX"
		if idx.unique {
			stmt = "CREATE UNIQUE INDEX"
		}
		sql := fmt.Sprintf("%s %s ON %s (%s)", stmt, idx.name, idx.table, idx.columns)
		if idx.where != "" {
			sql += " WHERE " + idx.where
		}

		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
