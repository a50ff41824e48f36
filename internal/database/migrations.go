package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes. Postgres only; AutoMigrate
// covers the tag-declared indexes on the other drivers.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"categories", "idx_categories_checklist_id", "checklist_id"},
		{"tasks", "idx_tasks_category_id", "category_id"},
		{"tasks", "idx_tasks_is_buddy_task", "is_buddy_task"},

		{"task_progresses", "idx_task_progresses_user_id", "user_id"},
		{"task_progresses", "idx_task_progresses_task_id", "task_id"},
		{"buddy_preparation_task_progresses", "idx_bptp_preparation_id", "preparation_id"},

		{"users", "idx_users_organization_id", "organization_id"},
		{"users", "idx_users_buddy_id", "buddy_id"},
		{"buddy_preparations", "idx_buddy_preparations_buddy_id", "buddy_id"},
		{"buddy_preparations", "idx_buddy_preparations_email", "email"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
