package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/todo-app/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by the owner-scoped todo queries
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Home list: WHERE user_id = ? ORDER BY created_at DESC
		{"todos", "idx_todos_user_created", "user_id, created_at"},
		// Active / completed counters and filters
		{"todos", "idx_todos_user_completed", "user_id, completed"},
		{"todos", "idx_todos_due_date", "due_date"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			slog.Debug("index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", slog.String("index", idx.name), slog.String("table", idx.table))
	}

	return nil
}

// BackfillTodoDefaults fills priority and due date on rows created before
// those columns existed. It is idempotent and runs once per migration.
func BackfillTodoDefaults(db *gorm.DB) error {
	res := db.Model(&models.Todo{}).
		Where("priority IS NULL OR priority = ''").
		Update("priority", models.PriorityMedium)
	if res.Error != nil {
		return fmt.Errorf("backfill priority: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		slog.Info("backfilled todo priority", slog.Int64("rows", res.RowsAffected))
	}

	res = db.Model(&models.Todo{}).
		Where("due_date IS NULL").
		Update("due_date", gorm.Expr("DATE(created_at)"))
	if res.Error != nil {
		return fmt.Errorf("backfill due date: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		slog.Info("backfilled todo due date", slog.Int64("rows", res.RowsAffected))
	}

	return nil
}
